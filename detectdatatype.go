package sumstats

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"

	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeBZip2
	DataTypeZstd
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeBZip2:
		return "bzip2"
	case DataTypeZstd:
		return "zstd"
	}

	return "invalid"
}

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
	DataTypeZstd:  {0x28, 0xb5, 0x2f, 0xfd},
}

// DetectDataType identifies the compression of a stream from its leading
// bytes without consuming them. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectDataType(r *bufio.Reader) (DataType, error) {
	buff, err := r.Peek(6)
	if err != nil && err != io.EOF {
		return DataTypeInvalid, err
	}

	for dt, sig := range byteCodeSigs {
		if bytes.HasPrefix(buff, sig) {
			return dt, nil
		}
	}

	return DataTypeNoCompression, nil
}

// MaybeDecompressReadCloser wraps rc so that reads yield decompressed bytes
// whenever rc holds a recognized compressed stream. Closing the result closes
// rc.
func MaybeDecompressReadCloser(rc io.ReadCloser) (io.ReadCloser, DataType, error) {
	br := bufio.NewReader(rc)
	dt, err := DetectDataType(br)
	if err != nil {
		return nil, dt, pfx.Err(err)
	}

	var r io.Reader
	switch dt {
	case DataTypeGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, dt, pfx.Err(err)
		}
		return &stackedReadCloser{Reader: gz, closers: []io.Closer{gz, rc}}, dt, nil
	case DataTypeZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, dt, pfx.Err(err)
		}
		return &stackedReadCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), rc}}, dt, nil
	case DataTypeZip:
		zs := zipstream.NewReader(br)
		// Only the first member of an archive is read.
		if _, err := zs.Next(); err != nil {
			return nil, dt, pfx.Err(err)
		}
		r = zs
	case DataTypeBZip2:
		r = bzip2.NewReader(br)
	case DataTypeXZ:
		xr, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, dt, pfx.Err(err)
		}
		r = xr
	default:
		r = br
	}

	return &stackedReadCloser{Reader: r, closers: []io.Closer{rc}}, dt, nil
}

// stackedReadCloser closes every layer of a decompression stack, innermost
// first.
type stackedReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReadCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
