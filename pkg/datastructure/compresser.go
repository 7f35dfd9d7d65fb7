package datastructure

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// CompressData zstd-compresses inData into bbufOut.
func CompressData(inData []byte, bbufOut *bytes.Buffer) error {
	inputBuf := bytes.NewBuffer(inData)
	encoder, err := zstd.NewWriter(bbufOut, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return errors.Wrap(err, "failed to create zstd encoder")
	}

	_, err = io.Copy(encoder, inputBuf)
	if err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

func DecompressData(inData []byte, out io.Writer) error {
	in := bytes.NewBuffer(inData)
	d, err := zstd.NewReader(in)
	if err != nil {
		return errors.Wrap(err, "failed to create zstd decoder")
	}
	defer d.Close()

	_, err = io.Copy(out, d)
	return err
}
