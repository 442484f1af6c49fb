package model

// WriteResult is the uniform outcome of save/delete/signup/book calls. Write
// operations never fail past their own boundary; they report here instead.
type WriteResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Succeeded(message string, data interface{}) WriteResult {
	return WriteResult{Success: true, Message: message, Data: data}
}

func Failed(message string) WriteResult {
	return WriteResult{Success: false, Message: message}
}

// ListResult carries a list read. Items is never nil so callers can always
// render it; Err is set when the fetch failed outright, which keeps a failure
// distinguishable from a legitimately empty set.
type ListResult[T any] struct {
	Items []T
	Err   error
}

func ListOf[T any](items []T) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{Items: items}
}

func ListFailure[T any](err error) ListResult[T] {
	return ListResult[T]{Items: []T{}, Err: err}
}

func (r ListResult[T]) Failed() bool {
	return r.Err != nil
}

func (r ListResult[T]) Empty() bool {
	return r.Err == nil && len(r.Items) == 0
}
