package domain

// ProgressUpdate is a validated "I am at chapter X, page Y of manga M from
// source S" report. It is built fresh for every request.
type ProgressUpdate struct {
	Manga   string
	Source  string
	Chapter uint32
	Page    uint32 // 0 when the client did not send one
}
