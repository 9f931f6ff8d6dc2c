package loaders

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-dx12/engine/renderer/metadata"
)

// BinaryLoader reads compiled shader bytecode. The resource is named after
// params["name"] when params is a map[string]string carrying one.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(buf)%4 != 0 {
		return nil, errors.Newf("%s: bytecode size %d is not a multiple of 4", path, len(buf))
	}

	name := ""
	if p, ok := params.(map[string]string); ok {
		name = p["name"]
	}

	res := bytesToBytecode(buf)
	return &metadata.Resource{
		Type:     metadata.ResourceTypeBinary,
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     res,
	}, nil
}

func (bl *BinaryLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}
	return byteCode
}
