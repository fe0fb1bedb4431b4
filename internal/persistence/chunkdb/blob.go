package chunkdb

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"voxelforge.dev/internal/sim/voxel"
)

// blobCodec turns a voxel grid into a zstd blob and back. Generated terrain
// is highly repetitive, so even the default level shrinks chunks by an order
// of magnitude.
type blobCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newBlobCodec() (*blobCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &blobCodec{enc: enc, dec: dec}, nil
}

func (c *blobCodec) close() {
	c.enc.Close()
	c.dec.Close()
}

func (c *blobCodec) encode(voxels []voxel.Type) ([]byte, error) {
	raw := make([]byte, len(voxels))
	for i, v := range voxels {
		raw[i] = byte(v)
	}
	return c.enc.EncodeAll(raw, nil), nil
}

func (c *blobCodec) decode(blob []byte, wantLen int) ([]voxel.Type, error) {
	raw, err := c.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) != wantLen {
		return nil, fmt.Errorf("blob holds %d voxels, want %d", len(raw), wantLen)
	}
	voxels := make([]voxel.Type, len(raw))
	for i, b := range raw {
		voxels[i] = voxel.Type(b)
	}
	return voxels, nil
}
