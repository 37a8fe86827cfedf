// Package quiz discovers and answers the questions of an online quiz.
//
// A run is sequenced by the Runner:
//
//  1. Navigate: the page handle loads the quiz URL
//  2. Locate: the Locator fixes the working document, either an embedded
//     frame whose URL looks like quiz content or the root page
//  3. Analyze: the Extractor turns the working document's content tree into
//     an ordered, immutable list of Questions
//  4. Answer: the Dispatcher answers each Question in order, first through a
//     structural selector action and then, on failure, through one
//     natural-language instruction to the Actor
//  5. Submit: two best-effort instructions submit the quiz and confirm any
//     dialog
//
// Failures while locating or analyzing end the run. Failures answering a
// single question are logged and absorbed.
//
// The package only depends on capability interfaces (Page, Document, Element,
// Actor, Logger). pkg/browser supplies the Playwright implementation,
// pkg/snapshot an offline one and pkg/act the Actor.
package quiz
