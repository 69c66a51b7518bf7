package wire

import (
	"github.com/gogo/protobuf/proto"
)

// RoundTrip serializes m via proto.Marshal and reparses the bytes back into
// m via proto.Unmarshal, returning the first error either step reports; the
// builder calls it on every TaskInfo/ExecutorInfo before an InstanceOp is
// handed off. It does not compare the reparsed message with the original:
// on success m holds the reparsed value.
func RoundTrip(m proto.Message) error {
	data, err := proto.Marshal(m)
	if err != nil {
		return err
	}
	return proto.Unmarshal(data, m)
}
