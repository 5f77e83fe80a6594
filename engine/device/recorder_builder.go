package device

// RecorderOption is a functional option for configuring a Recorder via NewRecorder.
type RecorderOption func(*Recorder)

// WithFailure makes every call of a resource-creating operation fail with err.
//
// Parameters:
//   - op: one of OpCreateVertexBuffer, OpCreateIndexBuffer or OpCreateTexture
//   - err: the error to return
//
// Returns:
//   - RecorderOption: a function that applies the failure to a recorder
func WithFailure(op Op, err error) RecorderOption {
	return func(r *Recorder) {
		r.failOn[op] = err
	}
}
