package assets

// Loader reads an asset from disk. The concrete type of the result depends
// on the loader.
type Loader interface {
	Load(path string) (interface{}, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (interface{}, error)

func (f LoaderFunc) Load(path string) (interface{}, error) {
	return f(path)
}
