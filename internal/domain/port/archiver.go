package port

import "context"

type Archiver interface {
	CreateZip(ctx context.Context, dir string, outputPath string) error
}
