// Package curriculum ships the built-in onboarding schema: a
// five-section wellness dialogue covering life, health, diet, finances,
// and goals. Applications that want the stock experience register
// Schema() and go; it also serves as the reference for writing custom
// schemas.
package curriculum

import (
	"fmt"
	"strings"
	"time"

	"github.com/petrijr/onboard"
	"github.com/petrijr/onboard/pkg/api"
)

// Name and Version identify the built-in schema in the registry.
const (
	Name    = "wellness"
	Version = "v1"
)

// occupationResponses keys the acknowledgement for the occupation
// question on keywords in the answer. First match wins.
var occupationResponses = api.MatchTable{
	Rules: []api.MatchRule{
		{Match: api.MatchContains("engineer", "developer", "programmer"), Result: "A builder! The world runs on people like you."},
		{Match: api.MatchContains("teacher", "professor", "tutor"), Result: "Shaping minds, that's wonderful work."},
		{Match: api.MatchContains("doctor", "nurse", "medic"), Result: "Taking care of people for a living, respect."},
		{Match: api.MatchContains("student"), Result: "Student life! Enjoy it while it lasts."},
		{Match: api.MatchContains("retired"), Result: "Living the dream already."},
	},
	Default: "That sounds interesting!",
}

// cityResponses keys the acknowledgement for the location question on
// the city the user named.
var cityResponses = api.MatchTable{
	Rules: []api.MatchRule{
		{Match: api.MatchContains("new york"), Result: "The city that never sleeps!"},
		{Match: api.MatchContains("london"), Result: "Mind the gap!"},
		{Match: api.MatchContains("tokyo"), Result: "Konnichiwa!"},
		{Match: api.MatchContains("helsinki"), Result: "Moi! A fellow northerner."},
	},
	Default: "I hear it's lovely there.",
}

// Schema builds the built-in curriculum. Each call returns a fresh
// value so callers can tweak a copy before registering it.
func Schema() *api.Schema {
	return onboard.New(Name, Version).
		Section("life", "About you", "Let's start with the basics.").
		Icon("👤").
		Intro("welcome", "Hi! I'm here to get to know you a little. It only takes a few minutes, and you can skip anything you'd rather not answer.").
		Text("full-name", "What's your full name?",
			onboard.Field("life", "fullName"),
			onboard.WithValidate(api.NonEmptyString),
			onboard.WithRespond(greetByFirstName)).
		Text("birthdate", "When were you born? Any common date format works.",
			onboard.Field("life", "birthdate"),
			onboard.WithParse(parseDate),
			onboard.WithDerived(onboard.Field("life", "age"), 0, computeAge),
			onboard.WithRespond(func(value any, p api.Profile) string {
				return fmt.Sprintf("Got it, so you're %d. Noted!", p.GetInt(api.Field("life", "age")))
			})).
		Text("location", "Where do you live? City and state is perfect.",
			onboard.Field("life", "city"),
			onboard.WithParse(parseCity),
			onboard.WithDerived(onboard.Field("life", "state"), "", computeState),
			onboard.WithRespond(func(value any, p api.Profile) string {
				return cityResponses.Lookup(fmt.Sprint(value))
			})).
		Text("occupation", "And what do you do for a living?",
			onboard.Field("life", "occupation"),
			onboard.WithValidate(api.NonEmptyString),
			onboard.WithRespond(func(value any, p api.Profile) string {
				return occupationResponses.Lookup(fmt.Sprint(value))
			})).
		Section("health", "Health", "A few quick health questions.").
		Icon("💪").
		Intro("health-intro", "Now a bit about how you're feeling day to day.").
		Text("weight", "What's your current weight? Include the unit if you like (kg or lbs).",
			onboard.Field("health", "weight"),
			onboard.WithParse(parseWeightMagnitude),
			onboard.WithDerived(onboard.Field("health", "weightUnit"), "lbs", computeWeightUnit)).
		Slider("energy", "How's your energy level on a typical day?",
			onboard.Field("health", "energy"), 1, 10, 5).
		Slider("sleep-quality", "And how well do you usually sleep?",
			onboard.Field("health", "sleepQuality"), 1, 10, 5).
		Choice("exercise", "How often do you exercise?",
			onboard.Field("health", "exerciseFrequency"),
			onboard.Options(
				"daily", "Every day",
				"weekly", "A few times a week",
				"rarely", "Now and then",
				"never", "Basically never",
			)).
		Section("diet", "Diet", "What does eating look like for you?").
		Icon("🥗").
		Choice("diet-style", "Which best describes how you eat?",
			onboard.Field("diet", "style"),
			onboard.Options(
				"omnivore", "A bit of everything",
				"vegetarian", "Vegetarian",
				"vegan", "Vegan",
				"pescatarian", "Pescatarian",
				"keto", "Keto / low-carb",
			)).
		Multiselect("restrictions", "Any of these you avoid? Pick all that apply, or none.",
			onboard.Field("diet", "restrictions"),
			onboard.Options(
				"gluten", "Gluten",
				"dairy", "Dairy",
				"nuts", "Nuts",
				"shellfish", "Shellfish",
			)).
		Slider("water", "How many glasses of water do you drink a day?",
			onboard.Field("diet", "waterGlasses"), 0, 12, 6).
		Section("financial", "Money", "Roughly, no exact figures needed.").
		Icon("💰").
		Intro("financial-intro", "Two quick money questions. Ballparks like \"75k\" are fine.").
		Text("income", "What's your yearly income, more or less?",
			onboard.Field("financial", "income"),
			onboard.WithParse(parseAmount)).
		Text("savings", "And roughly how much do you have saved up?",
			onboard.Field("financial", "savings"),
			onboard.WithParse(parseAmount)).
		Choice("risk", "How do you feel about financial risk?",
			onboard.Field("financial", "riskTolerance"),
			onboard.Options(
				"low", "Keep it safe",
				"medium", "Some risk is fine",
				"high", "Go big",
			)).
		Section("goals", "Goals", "Last one. What are you here for?").
		Icon("🎯").
		Multiselect("focus-areas", "Which areas do you want to focus on?",
			onboard.Field("goals", "focusAreas"),
			onboard.Options(
				"fitness", "Fitness",
				"nutrition", "Nutrition",
				"sleep", "Sleep",
				"money", "Money",
				"mindfulness", "Mindfulness",
			),
			onboard.WithRequireSelection()).
		Text("motivation", "In a sentence or two, what's driving you right now?",
			onboard.Field("goals", "motivation"),
			onboard.WithValidate(api.NonEmptyString)).
		Slider("commitment", "How committed are you feeling?",
			onboard.Field("goals", "commitment"), 1, 10, 5).
		Outro("farewell", "That's everything! Thanks for sharing, your plan is on its way. 🎉").
		Remap(onboard.Field("life", "fullName"), "name", "").
		Remap(onboard.Field("life", "age"), "age", 0).
		Remap(onboard.Field("life", "city"), "city", "").
		Remap(onboard.Field("life", "state"), "state", "").
		Remap(onboard.Field("life", "occupation"), "occupation", "").
		Remap(onboard.Field("health", "weight"), "weight", 0).
		Remap(onboard.Field("health", "weightUnit"), "weightUnit", "lbs").
		Remap(onboard.Field("health", "energy"), "energyLevel", 5).
		Remap(onboard.Field("health", "sleepQuality"), "sleepQuality", 5).
		RemapConst("sleepHours", 8).
		Remap(onboard.Field("health", "exerciseFrequency"), "exerciseFrequency", "").
		Remap(onboard.Field("diet", "style"), "dietStyle", "").
		Remap(onboard.Field("diet", "restrictions"), "dietRestrictions", []string{}).
		Remap(onboard.Field("diet", "waterGlasses"), "waterGlasses", 6).
		Remap(onboard.Field("financial", "income"), "income", 0).
		Remap(onboard.Field("financial", "savings"), "savings", 0).
		Remap(onboard.Field("financial", "riskTolerance"), "riskTolerance", "").
		Remap(onboard.Field("goals", "focusAreas"), "focusAreas", []string{}).
		Remap(onboard.Field("goals", "motivation"), "motivation", "").
		Remap(onboard.Field("goals", "commitment"), "commitment", 5).
		MustBuild()
}

// Register registers the built-in schema on an engine.
func Register(e onboard.Engine) error {
	return e.RegisterSchema(Schema())
}

func greetByFirstName(value any, p api.Profile) string {
	name := fmt.Sprint(value)
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}
	return fmt.Sprintf("Nice to meet you, %s!", name)
}

func parseDate(raw any) (any, bool) {
	return api.ParseDate(fmt.Sprint(raw))
}

func computeAge(raw, value any, p api.Profile) (any, bool) {
	iso, ok := value.(string)
	if !ok || iso == "" {
		return nil, false
	}
	return api.Age(iso, time.Now()), true
}

func parseCity(raw any) (any, bool) {
	city, _ := api.ParseLocation(fmt.Sprint(raw))
	return city, city != ""
}

func computeState(raw, value any, p api.Profile) (any, bool) {
	_, state := api.ParseLocation(fmt.Sprint(raw))
	return state, state != ""
}

func parseWeightMagnitude(raw any) (any, bool) {
	magnitude, _ := api.ParseWeight(fmt.Sprint(raw))
	return magnitude, true
}

func computeWeightUnit(raw, value any, p api.Profile) (any, bool) {
	_, unit := api.ParseWeight(fmt.Sprint(raw))
	return unit, true
}

func parseAmount(raw any) (any, bool) {
	return api.ParseScaledNumber(fmt.Sprint(raw)), true
}
