package eigenda

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/ratelimit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// maxBlobMessageSize leaves room above the 16 MiB blob limit.
const maxBlobMessageSize = 32 << 20

// DialDisperser opens a connection to the disperser gRPC endpoint.
func DialDisperser(addr string, useTLS bool) (*grpc.ClientConn, error) {
	if addr == "" {
		return nil, errors.New("disperser address is required")
	}

	creds := insecure.NewCredentials()
	if useTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxBlobMessageSize)),
	)
	if err != nil {
		return nil, fmt.Errorf("dial disperser %s: %w", addr, err)
	}
	return conn, nil
}

// DisperserClient retrieves blobs through Disperser.RetrieveBlob.
type DisperserClient struct {
	conn    Invoker
	limiter ratelimit.Limiter
	metrics RPCMetrics
}

// NewDisperserClient wraps conn; rps caps outgoing calls, zero disables the cap.
func NewDisperserClient(conn Invoker, rps int, metrics RPCMetrics) *DisperserClient {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &DisperserClient{conn: conn, limiter: limiter, metrics: metrics}
}

// RetrieveBlob returns the blob at index of the batch. A NotFound status means the batch has no such blob.
func (c *DisperserClient) RetrieveBlob(ctx context.Context, batchHeaderHash common.Hash, index uint32) (data []byte, found bool, err error) {
	c.limiter.Take()

	started := time.Now()
	defer func() {
		c.metrics.Observe("retrieve_blob", err, started)
	}()

	reply := dynamicpb.NewMessage(disperserAPI.reply)
	err = c.conn.Invoke(ctx, disperserAPI.retrieveBlob, newRetrieveBlobRequest(batchHeaderHash, index), reply)
	if status.Code(err) == codes.NotFound {
		err = nil
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("retrieve blob %s/%d: %w", batchHeaderHash.Hex(), index, err)
	}
	return retrieveBlobData(reply), true, nil
}

func newRetrieveBlobRequest(batchHeaderHash common.Hash, index uint32) *dynamicpb.Message {
	req := dynamicpb.NewMessage(disperserAPI.request)
	req.Set(disperserAPI.batchHeaderHash, protoreflect.ValueOfBytes(batchHeaderHash.Bytes()))
	req.Set(disperserAPI.blobIndex, protoreflect.ValueOfUint32(index))
	return req
}

func retrieveBlobData(reply *dynamicpb.Message) []byte {
	return append([]byte{}, reply.Get(disperserAPI.data).Bytes()...)
}

// disperserAPI is the subset of disperser/disperser.proto used to read blobs.
var disperserAPI = mustDisperserAPI()

type disperserDescriptors struct {
	request         protoreflect.MessageDescriptor
	reply           protoreflect.MessageDescriptor
	batchHeaderHash protoreflect.FieldDescriptor
	blobIndex       protoreflect.FieldDescriptor
	data            protoreflect.FieldDescriptor
	retrieveBlob    string
}

func mustDisperserAPI() disperserDescriptors {
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	field := func(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(number),
			Label:  optional,
			Type:   typ.Enum(),
		}
	}

	file, err := protodesc.NewFile(&descriptorpb.FileDescriptorProto{
		Name:    proto.String("disperser/disperser.proto"),
		Package: proto.String("disperser"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("RetrieveBlobRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("batch_header_hash", 1, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
					field("blob_index", 2, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
				},
			},
			{
				Name: proto.String("RetrieveBlobReply"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("data", 1, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Disperser"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("RetrieveBlob"),
				InputType:  proto.String(".disperser.RetrieveBlobRequest"),
				OutputType: proto.String(".disperser.RetrieveBlobReply"),
			}},
		}},
	}, new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("disperser descriptor: %v", err))
	}

	method := file.Services().ByName("Disperser").Methods().ByName("RetrieveBlob")
	request, reply := method.Input(), method.Output()
	return disperserDescriptors{
		request:         request,
		reply:           reply,
		batchHeaderHash: request.Fields().ByName("batch_header_hash"),
		blobIndex:       request.Fields().ByName("blob_index"),
		data:            reply.Fields().ByName("data"),
		retrieveBlob:    fmt.Sprintf("/%s/%s", method.Parent().FullName(), method.Name()),
	}
}
