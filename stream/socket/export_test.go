package socket

// SetRetrySleep swaps the pause between connect attempts and returns
// the restore function.
func SetRetrySleep(f func()) (restore func()) {
	old := retrySleep
	retrySleep = f
	return func() { retrySleep = old }
}
