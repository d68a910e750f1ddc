package writers

// writer takes a map of file names to rendered configuration and writes it
// somewhere, returning any console output.
type writer interface {
	Write(files map[string]string) (string, error)
}
