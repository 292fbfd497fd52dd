// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package binfile

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"lukechampine.com/blake3"

	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
)

// ============================================================================
// Checkpoint File Format
// ============================================================================

// Checkpoint is a programatic representation of a checkpoint file, which holds
// the query record of one or more executions of a given program.
type Checkpoint struct {
	// Header for the checkpoint file
	Header Header
	// Snapshot of the record itself
	Record record.Snapshot
}

// NewCheckpoint constructs a checkpoint for a record of a given program, using
// the default header for the currently supported version.  The header's
// metadata identifies the program's source.
func NewCheckpoint(program []byte, rec *record.QueryRecord) *Checkpoint {
	id := ProgramID(program)
	//
	return &Checkpoint{
		Header{LAIRCKPT, BINFILE_MAJOR_VERSION, BINFILE_MINOR_VERSION, id[:]},
		*rec.Snapshot(),
	}
}

// ProgramID returns the content identifier of a program's source.
func ProgramID(program []byte) [32]byte {
	return blake3.Sum256(program)
}

// Matches determines whether this checkpoint was taken for a given program.
func (p *Checkpoint) Matches(program []byte) bool {
	id := ProgramID(program)
	//
	return bytes.Equal(p.Header.MetaData, id[:])
}

// Restore reconstructs the record held in this checkpoint against a given
// toplevel.
func (p *Checkpoint) Restore(top *toplevel.Toplevel) (*record.QueryRecord, error) {
	return record.Restore(top, &p.Record)
}

// Header provides a structured header for the checkpoint file format.  In
// particular, it supports versioning and embedded (binary) metadata.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
	MetaData     []byte
}

// MarshalBinary converts the checkpoint header into a sequence of bytes.
// Observe that we don't use GobEncoding here to avoid being tied to that
// encoding scheme.
func (p *Header) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	// Write identifier
	buffer.Write(p.Identifier[:])
	// Write version numbers, followed by metadata length
	buffer.Write(binary.BigEndian.AppendUint16(nil, p.MajorVersion))
	buffer.Write(binary.BigEndian.AppendUint16(nil, p.MinorVersion))
	buffer.Write(binary.BigEndian.AppendUint32(nil, uint32(len(p.MetaData))))
	// Write metadata itself
	buffer.Write(p.MetaData)
	// Done
	return buffer.Bytes(), nil
}

// UnmarshalBinary initialises this header from a given buffer.  This should
// match exactly the encoding above.
func (p *Header) UnmarshalBinary(buffer *bytes.Buffer) error {
	var fixed [16]byte
	// Read identifier, versions and metadata length
	if _, err := io.ReadFull(buffer, fixed[:]); err != nil {
		return errors.New("malformed checkpoint file")
	}
	//
	var (
		length = binary.BigEndian.Uint32(fixed[12:])
		meta   = make([]byte, length)
	)
	// Read metadata itself
	if _, err := io.ReadFull(buffer, meta); err != nil {
		return errors.New("malformed checkpoint file")
	}
	// Finally assign everything over
	copy(p.Identifier[:], fixed[:8])
	p.MajorVersion = binary.BigEndian.Uint16(fixed[8:])
	p.MinorVersion = binary.BigEndian.Uint16(fixed[10:])
	p.MetaData = meta
	// Done
	return nil
}

// IsCompatible determines whether a given checkpoint file is compatible with
// this version of go-lair.
func (p *Header) IsCompatible() bool {
	return p.Identifier == LAIRCKPT &&
		p.MajorVersion == BINFILE_MAJOR_VERSION &&
		p.MinorVersion <= BINFILE_MINOR_VERSION
}

// BINFILE_MAJOR_VERSION gives the major version of the checkpoint file format.
// No matter what version, we should always have the LAIRCKPT identifier
// first, followed by the header.  What follows after that, however, is
// determined by the major version.
const BINFILE_MAJOR_VERSION uint16 = 1

// BINFILE_MINOR_VERSION gives the minor version of the checkpoint file format.
// The expected interpretation is that older versions are compatible with newer
// ones, but not vice-versa.
const BINFILE_MINOR_VERSION uint16 = 0

// LAIRCKPT is used as the file identifier for checkpoint files.  This just
// helps us identify actual checkpoint files from corrupted files.
var LAIRCKPT = [8]byte{'l', 'a', 'i', 'r', 'c', 'k', 'p', 't'}

// IsCheckpoint checks whether the given data begins with the expected
// "lairckpt" identifier.
func IsCheckpoint(data []byte) bool {
	return len(data) >= len(LAIRCKPT) && bytes.Equal(data[:len(LAIRCKPT)], LAIRCKPT[:])
}

// MarshalBinary converts the checkpoint into a sequence of bytes.
func (p *Checkpoint) MarshalBinary() ([]byte, error) {
	var (
		buffer     bytes.Buffer
		gobEncoder = gob.NewEncoder(&buffer)
	)
	// Marshal header
	headerBytes, err := p.Header.MarshalBinary()
	//
	if err != nil {
		return nil, err
	}
	// Encode header
	buffer.Write(headerBytes)
	// Encode record
	if err := gobEncoder.Encode(&p.Record); err != nil {
		return nil, err
	}
	// Done
	return buffer.Bytes(), nil
}

// UnmarshalBinary initialises this checkpoint from a given set of data bytes.
// This should match exactly the encoding above.
func (p *Checkpoint) UnmarshalBinary(data []byte) error {
	var err error
	//
	buffer := bytes.NewBuffer(data)
	// Read header
	if err = p.Header.UnmarshalBinary(buffer); err == nil && p.Header.IsCompatible() {
		// Looks good, proceed.
		err = gob.NewDecoder(buffer).Decode(&p.Record)
	} else if err == nil {
		err = fmt.Errorf("incompatible checkpoint file was v%d.%d, but expected v%d.%d",
			p.Header.MajorVersion, p.Header.MinorVersion, BINFILE_MAJOR_VERSION, BINFILE_MINOR_VERSION)
	}
	//
	return err
}
