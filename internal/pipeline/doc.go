// Package pipeline drives a session through the fixed analysis phase
// sequence. Each phase builds its prompt from the task, the codebase
// facts and every earlier phase's output, calls the LLM client, and
// persists the session snapshot before the next phase begins.
//
// Run is idempotent with respect to completed work: phases already
// completed are skipped without an LLM call or state mutation, so a
// crashed or failed run resumes from the first incomplete phase. Any
// phase failure halts the pipeline; completed phases and their output
// files are never discarded.
package pipeline
