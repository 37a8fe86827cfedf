// Package headless runs one quiz end to end without interaction.
//
// The executor opens a browser session (or, for dry runs, a saved HTML
// page), wires the quiz components to it and reports progress on the
// console:
//
//	┌─────────────────────────────────────────────────────────┐
//	│                 Headless Executor                       │
//	│  - Run configuration (YAML)                             │
//	│  - Console progress                                     │
//	│  - Artifact Generation                                  │
//	└──────────────────┬──────────────────────────────────────┘
//	                   │
//	                   ▼
//	        ┌──────────────────────┐
//	        │   quiz.Runner        │
//	        │  locate → extract →  │
//	        │  answer → submit     │
//	        └──────────────────────┘
//
// Example usage:
//
//	cfg := headless.DefaultConfig()
//	cfg.URL = "https://lms.example/course/7/quiz"
//
//	provider, _ := openai.NewProvider(apiKey)
//	executor, _ := headless.NewExecutor(provider, cfg, headless.DefaultOptions(), nil)
//
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Dry runs:
//
// Setting Config.HTML runs against a saved page. Clicks and fills are
// recorded instead of performed, submission is skipped, and the recorded
// interactions are listed in the summary. A provider is optional; without
// one, questions whose primary path fails are abandoned.
//
// Artifacts:
//
// The artifact writer generates run reports:
// - execution.json: full run summary
// - summary.md: human-readable markdown summary
package headless
