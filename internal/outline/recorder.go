package outline

// Call is one AddEntry invocation seen by a Recorder.
type Call struct {
	Title  string
	Page   int
	Parent Handle
	Handle Handle
}

// Recorder is a Sink that keeps every call. Handles are the 1-based
// position of the call, so the first entry gets handle 1.
type Recorder struct {
	Calls []Call

	// Fail, if set, is consulted before each call; a non-nil result is
	// returned from AddEntry and the call is not recorded.
	Fail func(title string, page int) error
}

func (r *Recorder) AddEntry(title string, page int, parent Handle) (Handle, error) {
	if r.Fail != nil {
		if err := r.Fail(title, page); err != nil {
			return nil, err
		}
	}
	h := len(r.Calls) + 1
	r.Calls = append(r.Calls, Call{Title: title, Page: page, Parent: parent, Handle: h})
	return h, nil
}
