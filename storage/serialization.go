// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/poiesic/answerdesk/core"
)

// MarshalID encodes an ID.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID decodes an ID.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return id, nil
}

func MarshalTemplate(template *core.Template) []byte {
	buf := make([]byte, core.TemplateMUS.Size(*template))
	core.TemplateMUS.Marshal(*template, buf)
	return buf
}

func UnmarshalTemplate(data []byte) (*core.Template, error) {
	template, _, err := core.TemplateMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	// timestamps decode in the local zone; repositories keep UTC
	template.CreatedAt = template.CreatedAt.UTC()
	template.ModifiedAt = template.ModifiedAt.UTC()
	return &template, nil
}

func MarshalMemo(memo *core.AnswerMemo) []byte {
	buf := make([]byte, core.AnswerMemoMUS.Size(*memo))
	core.AnswerMemoMUS.Marshal(*memo, buf)
	return buf
}

func UnmarshalMemo(data []byte) (*core.AnswerMemo, error) {
	memo, _, err := core.AnswerMemoMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	memo.ModifiedAt = memo.ModifiedAt.UTC()
	return &memo, nil
}
