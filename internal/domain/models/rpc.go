// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// MaterializeRequest is the request payload for the materialize subject.
// The payload is encoded with msgpack so that the time bounds survive the
// round trip without depending on a JSON time format.
type MaterializeRequest struct {
	TemplateUID string    `msgpack:"template_uid"`
	WindowStart time.Time `msgpack:"window_start"`
	WindowEnd   time.Time `msgpack:"window_end"`
}

// MaterializeResponse is the response payload for the materialize subject.
type MaterializeResponse struct {
	Occurrences []Occurrence `msgpack:"occurrences"`
}

// PreviewRequest is the request payload for the preview subject. Limit is
// capped by the service; a zero limit means the default is used.
type PreviewRequest struct {
	TemplateUID string    `msgpack:"template_uid"`
	From        time.Time `msgpack:"from"`
	Limit       int       `msgpack:"limit"`
}

// PreviewResponse is the response payload for the preview subject.
type PreviewResponse struct {
	Occurrences []Occurrence `msgpack:"occurrences"`
}
