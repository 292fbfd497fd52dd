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
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"lukechampine.com/blake3"

	// Registers the "sqlite" driver
	_ "modernc.org/sqlite"

	"github.com/consensys/go-lair/pkg/binfile"
)

// ErrNotFound is returned when no checkpoint has a given identifier.
var ErrNotFound = errors.New("checkpoint not found")

const schema = `CREATE TABLE IF NOT EXISTS checkpoints (
	id BLOB NOT NULL,
	program BLOB NOT NULL,
	label TEXT NOT NULL,
	data BLOB NOT NULL,
	created INTEGER NOT NULL,
	seq INTEGER NOT NULL,

	PRIMARY KEY(id)
) WITHOUT ROWID, STRICT;`

// ID identifies a checkpoint by the content hash of its encoding.
type ID [32]byte

// ParseID parses an identifier from its hexadecimal form.
func ParseID(str string) (ID, error) {
	var id ID
	//
	bytes, err := hex.DecodeString(str)
	//
	if err != nil {
		return id, fmt.Errorf("invalid checkpoint id %q: %w", str, err)
	} else if len(bytes) != len(id) {
		return id, fmt.Errorf("invalid checkpoint id %q: expected %d bytes", str, len(id))
	}
	//
	copy(id[:], bytes)
	//
	return id, nil
}

func (p ID) String() string {
	return hex.EncodeToString(p[:])
}

// Info summarises a stored checkpoint.
type Info struct {
	ID      ID
	Program [32]byte
	Label   string
	Size    uint
	Created time.Time
}

type row struct {
	ID      []byte `db:"id"`
	Program []byte `db:"program"`
	Label   string `db:"label"`
	Size    int64  `db:"size"`
	Created int64  `db:"created"`
}

// Store persists checkpoints in a sqlite database.  Checkpoints are content
// addressed, such that storing the same checkpoint twice has no effect.
type Store struct {
	db *sqlx.DB
}

// Open a store backed by the sqlite database at a given path, creating it if
// necessary.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	//
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// Serialise writers
	db.SetMaxOpenConns(1)
	//
	store, err := New(ctx, db)
	//
	if err != nil {
		db.Close()
		return nil, err
	}
	//
	return store, nil
}

// New constructs a store over an existing database, initialising its schema.
func New(ctx context.Context, db *sqlx.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("initialising checkpoint store: %w", err)
	}
	//
	return &Store{db}, nil
}

// Close the underlying database.
func (p *Store) Close() error {
	return p.db.Close()
}

// Put a checkpoint into this store under a given label, returning its
// identifier.
func (p *Store) Put(ctx context.Context, label string, ckpt *binfile.Checkpoint) (ID, error) {
	data, err := ckpt.MarshalBinary()
	//
	if err != nil {
		return ID{}, fmt.Errorf("encoding checkpoint: %w", err)
	}
	//
	id := ID(blake3.Sum256(data))
	//
	// Checkpoints are sequenced in order of insertion
	if _, err := p.db.ExecContext(ctx, `INSERT INTO checkpoints (id, program, label, data, created, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM checkpoints)) ON CONFLICT DO NOTHING`,
		id[:], ckpt.Header.MetaData, label, data, time.Now().UnixNano()); err != nil {
		return ID{}, fmt.Errorf("storing checkpoint: %w", err)
	}
	//
	log.WithFields(log.Fields{"id": id.String(), "bytes": len(data)}).Debug("stored checkpoint")
	//
	return id, nil
}

// Get the checkpoint with a given identifier.
func (p *Store) Get(ctx context.Context, id ID) (*binfile.Checkpoint, error) {
	var (
		data []byte
		ckpt binfile.Checkpoint
	)
	//
	if err := p.db.GetContext(ctx, &data, `SELECT data FROM checkpoints WHERE id = ?`, id[:]); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		//
		return nil, err
	}
	//
	if err := ckpt.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decoding checkpoint %s: %w", id, err)
	}
	//
	return &ckpt, nil
}

// Exists determines whether a checkpoint with a given identifier is stored.
func (p *Store) Exists(ctx context.Context, id ID) (bool, error) {
	var exists bool
	//
	if err := p.db.GetContext(ctx, &exists, `SELECT EXISTS(
		SELECT 1 FROM checkpoints WHERE id = ?
	)`, id[:]); err != nil {
		return false, err
	}
	//
	return exists, nil
}

// List the checkpoints held in this store, optionally restricted to those of a
// given program, oldest first.
func (p *Store) List(ctx context.Context, program *[32]byte) ([]Info, error) {
	var (
		rows  []row
		query = `SELECT id, program, label, length(data) AS size, created FROM checkpoints`
		err   error
	)
	//
	if program != nil {
		err = p.db.SelectContext(ctx, &rows, query+` WHERE program = ? ORDER BY seq`, program[:])
	} else {
		err = p.db.SelectContext(ctx, &rows, query+` ORDER BY seq`)
	}
	//
	if err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	//
	infos := make([]Info, len(rows))
	//
	for i, r := range rows {
		copy(infos[i].ID[:], r.ID)
		copy(infos[i].Program[:], r.Program)
		infos[i].Label = r.Label
		infos[i].Size = uint(r.Size)
		infos[i].Created = time.Unix(0, r.Created)
	}
	//
	return infos, nil
}

// Delete the checkpoint with a given identifier.
func (p *Store) Delete(ctx context.Context, id ID) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id[:])
	//
	if err != nil {
		return err
	} else if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	//
	return nil
}
