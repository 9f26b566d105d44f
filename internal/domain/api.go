package domain

// Result is the normalized outcome of a remote API call. Code 0 is
// success; any other value is a failure with Message carrying the cause.
// Transport failures with no response at all use CodeTransportFailure.
type Result[T any] struct {
	Code    int
	Message string
	Data    *T
}

const CodeTransportFailure = -1

func (r Result[T]) OK() bool {
	return r.Code == 0
}

type AttendanceData struct {
	HasToday bool
}

type Award struct {
	Count int
	Icon  string
}

type ClaimData struct {
	Awards map[string]Award
}
