package summarizer

// Result is the outcome of a summarization attempt: either a summary text or
// absent. There is no error case; failures are absent results.
type Result struct {
	text string
	ok   bool
}

// Found wraps a generated summary.
func Found(text string) Result {
	return Result{text: text, ok: true}
}

// Absent is the result of a disabled or failed summarization.
func Absent() Result {
	return Result{}
}

// Ok reports whether a summary is present.
func (r Result) Ok() bool {
	return r.ok
}

// Value returns the summary and whether it is present.
func (r Result) Value() (string, bool) {
	return r.text, r.ok
}
