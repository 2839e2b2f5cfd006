// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chunk - fixed size chunking of repository data
package chunk

import (
	"sort"

	"github.com/gitcoin-inc/gitcoind/fault"
)

// Chunk - one piece of chunked data
type Chunk struct {
	Index uint32
	Data  []byte
}

// Split - divide data into chunks of chunkSize bytes
//
// the last chunk may be shorter, empty input yields no chunks
func Split(data []byte, chunkSize int) ([]Chunk, error) {
	if chunkSize < 1 {
		return nil, fault.ErrInvalidChunkSize
	}

	chunks := make([]Chunk, 0, (len(data)+chunkSize-1)/chunkSize)
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, Chunk{
			Index: uint32(len(chunks)),
			Data:  data[i:end],
		})
	}
	return chunks, nil
}

// Reassemble - restore the original data from chunks in any order
//
// indices must be contiguous from zero, a gap or duplicate yields
// the missing index as a MissingChunkError
func Reassemble(chunks []Chunk) ([]byte, error) {
	if 0 == len(chunks) {
		return []byte{}, nil
	}

	ordered := make([]Chunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	size := 0
	for i, c := range ordered {
		if uint32(i) != c.Index {
			return nil, fault.MissingChunkError(i)
		}
		size += len(c.Data)
	}

	data := make([]byte, 0, size)
	for _, c := range ordered {
		data = append(data, c.Data...)
	}
	return data, nil
}
