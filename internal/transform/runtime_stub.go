//go:build !govips || !cgo

package transform

func Startup() error {
	return nil
}

func Shutdown() {}

func newRenderer() (Renderer, error) {
	return bildRenderer{}, nil
}
