// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"reflect"
	"testing"
)

func TestDataRequestRoundTrip(t *testing.T) {
	r := DataRequest{NeuronID: 5, RequesterRank: 2}
	got := DecodeDataRequest(EncodeDataRequest(r))
	if got != r {
		t.Fatalf("round trip = %+v, want %+v", got, r)
	}
}

func TestDataResponseRoundTrip(t *testing.T) {
	r := DataResponse{Activity: 7, ResponderRank: 3, NeuronID: 9}
	got := DecodeDataResponse(EncodeDataResponse(r))
	if got != r {
		t.Fatalf("round trip = %+v, want %+v", got, r)
	}
}

func TestConfigPayloadRoundTrip(t *testing.T) {
	owners := []int{1, 2, 3, 1, 2}
	payload := ConfigPayload(owners)
	if len(payload) != 2*len(owners) {
		t.Fatalf("payload length = %d, want %d", len(payload), 2*len(owners))
	}
	got := DecodeConfigPayload(payload)
	if !reflect.DeepEqual(got, owners) {
		t.Fatalf("round trip = %v, want %v", got, owners)
	}
}

func TestTagString(t *testing.T) {
	cases := map[Tag]string{
		TagTask:         "TASK",
		TagConfig:       "CONFIG",
		TagDataRequest:  "DATA_REQUEST",
		TagDataResponse: "DATA_RESPONSE",
		TagTimeUpdate:   "TIME_UPDATE",
		TagTaskDone:     "TASK_DONE",
	}
	for tag, want := range cases {
		if got := tag.String(); got != want {
			t.Fatalf("Tag(%d).String() = %q, want %q", int(tag), got, want)
		}
	}
}
