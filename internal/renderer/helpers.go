package renderer

// Unwind collects cleanups for a partially built GL object. Call Unwind on
// failure, Discard once ownership has been handed over.
type Unwind []func()

func (u *Unwind) Add(cleanup func()) {
	*u = append(*u, cleanup)
}

func (u *Unwind) Unwind() {
	for i := len(*u) - 1; i >= 0; i-- {
		(*u)[i]()
	}
	*u = (*u)[:0]
}

func (u *Unwind) Discard() {
	if len(*u) > 0 {
		*u = (*u)[:0]
	}
}
