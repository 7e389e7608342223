package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/nutriplan/config"
	"github.com/pageza/nutriplan/internal/app"
	"github.com/pageza/nutriplan/internal/async"
	"github.com/pageza/nutriplan/internal/models"
	"github.com/pageza/nutriplan/internal/service"
)

const usage = `usage: nutriplan [-email E -password P [-signup] | -google-token T] <command> [flags]

commands:
  register   -name -age -gender -weight -height -activity -goal
  details
  plan       -name
  swap       -name -index
  recipe     -ingredients a,b,c
  feedback   -name -ratings 5,0,3 [-comments "good,,ok"]
  log        -meal -date
  log-custom -name -date -calories -protein -carbs -fat
  daily      -date
  weekly     -end [-share]
  report     -start -end [-share]
  logout
`

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup happens before exit
func run(argv []string) int {
	flags := flag.NewFlagSet("nutriplan", flag.ContinueOnError)
	email := flags.String("email", os.Getenv("NUTRIPLAN_EMAIL"), "account email")
	password := flags.String("password", os.Getenv("NUTRIPLAN_PASSWORD"), "account password")
	signup := flags.Bool("signup", false, "create the account before signing in")
	googleToken := flags.String("google-token", "", "sign in with a Google ID token instead of a password")
	timeout := flags.Duration("timeout", 30*time.Second, "overall timeout for the command")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := flags.Parse(argv); err != nil {
		return 2
	}

	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, log.Default())
	if err != nil {
		log.Printf("Failed to initialize client: %v", err)
		return 1
	}
	defer a.Close()

	seen, err := a.AuthVM.OnboardingSeen(ctx)
	if err != nil {
		log.Printf("Failed to read onboarding state: %v", err)
	}
	if !seen {
		fmt.Fprintln(os.Stderr, "Welcome to nutriplan. Register a profile with the register command to get a meal plan.")
		if err := a.AuthVM.MarkOnboardingSeen(ctx); err != nil {
			log.Printf("Failed to store onboarding state: %v", err)
		}
	}

	cmd, args := flags.Arg(0), flags.Args()[1:]
	if cmd == "logout" {
		if err := a.AuthVM.Logout(); err != nil {
			log.Printf("Logout failed: %v", err)
			return 1
		}
		fmt.Println("Signed out")
		return 0
	}

	var signIn *async.Task[service.AuthResult]
	switch {
	case *googleToken != "":
		signIn = a.AuthVM.LoginWithGoogle(*googleToken)
	case *signup:
		signIn = a.AuthVM.Signup(*email, *password)
	default:
		signIn = a.AuthVM.Login(*email, *password)
	}
	res, err := signIn.Wait(ctx)
	if err != nil {
		log.Printf("Sign-in failed: %v", err)
		return 1
	}
	if !res.Success {
		log.Printf("Sign-in failed: %s", res.ErrorMessage)
		return 1
	}

	if err := runCommand(ctx, a, res.User.UID, cmd, args); err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

func runCommand(ctx context.Context, a *app.App, uid, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	name := fs.String("name", "", "user or meal name")
	index := fs.Int("index", 0, "meal index in the plan")
	date := fs.String("date", models.FormatDate(time.Now()), "date (YYYY-MM-DD)")
	start := fs.String("start", "", "report start date (YYYY-MM-DD)")
	end := fs.String("end", models.FormatDate(time.Now()), "report end date (YYYY-MM-DD)")
	share := fs.Bool("share", false, "upload the report and print a shareable link")
	meal := fs.String("meal", "", "meal id")
	ingredients := fs.String("ingredients", "", "comma separated ingredients")
	ratings := fs.String("ratings", "", "comma separated ratings per plan entry, 0 to skip")
	comments := fs.String("comments", "", "comma separated comments per plan entry")
	age := fs.Int("age", 0, "age in years")
	gender := fs.String("gender", "", "male, female or other")
	weight := fs.Float64("weight", 0, "weight in kg")
	height := fs.Float64("height", 0, "height in cm")
	activity := fs.String("activity", "moderate", "activity level")
	goal := fs.String("goal", "maintain", "lose, maintain or gain")
	calories := fs.Float64("calories", 0, "calories")
	protein := fs.Float64("protein", 0, "protein in g")
	carbs := fs.Float64("carbs", 0, "carbs in g")
	fat := fs.Float64("fat", 0, "fat in g")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd {
	case "register":
		return report(ctx, a.UserVM.RegisterUser(models.UserProfile{
			UID: uid, Name: *name, Age: *age, Gender: *gender, Weight: *weight,
			Height: *height, ActivityLevel: *activity, Goal: *goal,
		}))
	case "details":
		if _, err := a.UserVM.FetchUserDetails(uid).Wait(ctx); err != nil {
			return fmt.Errorf("failed to fetch user details: %s", a.UserVM.Error.Value())
		}
		return printJSON(a.UserVM.UserDetails.Value())
	case "plan":
		return report(ctx, a.MealPlanVM.GetMealPlan(*name))
	case "swap":
		return report(ctx, a.MealPlanVM.SwapMealAndRefresh(*name, *index))
	case "recipe":
		return report(ctx, a.MealPlanVM.GenerateRecipeByIngredients(uid, strings.Split(*ingredients, ",")))
	case "feedback":
		return submitFeedback(ctx, a, uid, *name, *ratings, *comments)
	case "log":
		return report(ctx, a.StatsVM.LogMeal(uid, *meal, *date))
	case "log-custom":
		return report(ctx, a.StatsVM.LogCustomMeal(models.CustomMeal{
			UID: uid, Date: *date, Name: *name, Calories: *calories, Protein: *protein, Carbs: *carbs, Fat: *fat,
		}))
	case "daily":
		return report(ctx, a.StatsVM.FetchDailyNutrition(uid, *date))
	case "weekly":
		if err := report(ctx, a.StatsVM.FetchWeeklyReport(uid, *end)); err != nil || !*share {
			return err
		}
		return report(ctx, a.StatsVM.ShareWeeklyReport())
	case "report":
		if err := report(ctx, a.StatsVM.FetchNutritionReport(uid, *start, *end)); err != nil || !*share {
			return err
		}
		return report(ctx, a.StatsVM.ShareNutritionReport())
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func submitFeedback(ctx context.Context, a *app.App, uid, name, ratings, comments string) error {
	if _, err := a.MealPlanVM.GetMealPlan(name).Wait(ctx); err != nil {
		return fmt.Errorf("failed to load meal plan: %w", err)
	}

	commentList := strings.Split(comments, ",")
	for i, raw := range strings.Split(ratings, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "0" {
			continue
		}
		rating, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid rating %q: %w", raw, err)
		}
		if err := a.MealPlanVM.SetRating(i, rating); err != nil {
			return err
		}
		if i < len(commentList) && commentList[i] != "" {
			if err := a.MealPlanVM.SetComment(i, commentList[i]); err != nil {
				return err
			}
		}
	}

	return report(ctx, a.MealPlanVM.SubmitFeedback(uid))
}

func report[T any](ctx context.Context, t *async.Task[T]) error {
	v, err := t.Wait(ctx)
	if err != nil {
		return err
	}
	return printJSON(v)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
