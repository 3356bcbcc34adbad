package transport

import "time"

// Options 汇总构建默认 Mux 所需的参数。
type Options struct {
	Timeout time.Duration
	// S3 为空时不注册 s3 scheme。
	S3 *S3Options
}

// NewDefault 注册 http/https/file，并在配置了对象存储时追加 s3。
func NewDefault(opts Options) (*Mux, error) {
	mux := NewMux()
	mux.Handle(NewHTTPFetcher(NewClient(opts.Timeout)), "http", "https")
	mux.Handle(NewFileFetcher(nil), "file")
	if opts.S3 != nil && opts.S3.Endpoint != "" {
		s3, err := NewS3Fetcher(*opts.S3)
		if err != nil {
			return nil, err
		}
		mux.Handle(s3, "s3")
	}
	return mux, nil
}
