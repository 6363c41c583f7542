// Package onboard provides a lightweight, embeddable conversational
// onboarding engine for Go.
//
// Onboard is designed for backend services and bots that collect a
// structured user profile through a guided, sectioned dialogue: intros,
// free-text questions, single and multi selects, sliders, and an outro.
// It runs fully in Go, supports multiple persistence backends, and
// integrates cleanly into existing codebases.
//
// # Core Concepts
//
// The programming model is intentionally small and idiomatic:
//
//  1. Engine
//  2. Run
//  3. SchemaBuilder
//  4. Presenter
//  5. LocalRunner
//
// These components form a complete onboarding system with a typed answer
// pipeline, durable profiles (when using persistent backends), and a
// clear mental model.
//
// # Engine
//
// The Engine registers schemas, persists profile snapshots, and starts
// runs. When a user returns, the engine restores their collected answers
// from storage, but the conversation itself always restarts at the top:
// position is saved for diagnostics, never restored.
//
// Engines can be backed by different storage systems:
//
//   - In-memory (non-durable, best for tests)
//   - SQLite (embedded durability)
//   - Redis
//
// # Run
//
// A Run is one live conversation: the controller walks the schema
// section by section, presents each question through the Presenter, and
// feeds submitted answers through a parse, validate, store, respond
// pipeline. Rejected answers leave the profile and position untouched
// and produce a reprompt. Runs support section jumps and skips, report
// progress as a percentage, and hand a Completion (profile plus a
// flattened canonical remap) to registered callbacks when the outro is
// reached.
//
// # SchemaBuilder
//
// SchemaBuilder provides the ergonomic, declarative API used to define
// schemas:
//
//	onboard.New("wellness", "v1").
//	    Section("life", "About you", "The basics").
//	    Intro("welcome", "Hi!").
//	    Text("full-name", "What's your name?", onboard.Field("life", "fullName")).
//	    Outro("done", "Thanks!").
//	    MustBuild()
//
// Schemas can also be loaded from YAML with LoadSchemaFile; behavior is
// referenced by registered kind names.
//
// # Presenter
//
// A Presenter is the consumed UI collaborator: the engine tells it what
// to show (messages, choice lists, sliders), and answers come back
// through Run.SubmitAnswer. The engine never renders anything itself,
// so the same schema drives a console, a chat surface, or a test
// harness unchanged.
//
// # LocalRunner
//
// LocalRunner bundles an in-memory engine with a scripted answer driver
// useful for development and unit testing. It is intentionally not
// crash-durable, but it provides the most convenient way to run and
// debug schemas during development.
//
// For complete programs, see the /examples directory.
package onboard
