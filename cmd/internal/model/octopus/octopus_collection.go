package octopus

// GeneralCollection is the shape of every Octopus API collection response.
type GeneralCollection[T any] struct {
	Items          []T
	TotalResults   int
	ItemsPerPage   int
	NumberOfPages  int
	LastPageNumber int
}
