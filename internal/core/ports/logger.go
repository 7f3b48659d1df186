package ports

// Logger reports progress and failures of a generation pass.
//
//go:generate go run go.uber.org/mock/mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Info reports progress, such as written files.
	Info(msg string)
	// Warn reports problems that leave the pass successful.
	Warn(msg string)
	// Error reports err together with its chain of causes.
	Error(err error)
}
