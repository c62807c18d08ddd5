// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

// Fixed payload lengths for the tags whose shape does not depend on
// population size .
const (
	DataRequestLen  = 2
	DataResponseLen = 3
	TimeUpdateLen   = 1
	TaskDoneLen     = 1
)

// DataRequest is the (neuron_id, requester_rank) payload a worker
// sends to request another worker's mirrored activity.
type DataRequest struct {
	NeuronID      int32
	RequesterRank int32
}

// EncodeDataRequest packs a DataRequest into its wire form.
func EncodeDataRequest(r DataRequest) []int32 {
	return []int32{r.NeuronID, r.RequesterRank}
}

// DecodeDataRequest unpacks a DataRequest payload.
func DecodeDataRequest(payload []int32) DataRequest {
	return DataRequest{NeuronID: payload[0], RequesterRank: payload[1]}
}

// DataResponse is the (activity, responder_rank, neuron_id) reply to
// a DataRequest.
type DataResponse struct {
	Activity      int32
	ResponderRank int32
	NeuronID      int32
}

// EncodeDataResponse packs a DataResponse into its wire form.
func EncodeDataResponse(r DataResponse) []int32 {
	return []int32{r.Activity, r.ResponderRank, r.NeuronID}
}

// DecodeDataResponse unpacks a DataResponse payload.
func DecodeDataResponse(payload []int32) DataResponse {
	return DataResponse{Activity: payload[0], ResponderRank: payload[1], NeuronID: payload[2]}
}

// ConfigPayload packs the owner table (neuron_id, owner_rank) pairs
// for the CONFIG message : length 2N.
func ConfigPayload(owners []int) []int32 {
	out := make([]int32, 2*len(owners))
	for id, owner := range owners {
		out[2*id] = int32(id)
		out[2*id+1] = int32(owner)
	}
	return out
}

// DecodeConfigPayload unpacks a CONFIG message back into an owner
// table indexed by neuron id.
func DecodeConfigPayload(payload []int32) []int {
	n := len(payload) / 2
	owners := make([]int, n)
	for i := 0; i < n; i++ {
		id := payload[2*i]
		owner := payload[2*i+1]
		owners[id] = int(owner)
	}
	return owners
}
