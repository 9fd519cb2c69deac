// autodiary-cam - networked camera and microphone capture node
//  Copyright (C) 2026, the AutoDiary project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"
	"github.com/juju/ratelimit"
)

const (
	dbusName = "org.autodiary.camera"
	dbusPath = "/org/autodiary/camera"

	// Snapshot requests closer together than this are silently dropped;
	// back-to-back frames carry no new information.
	snapshotMinPeriod = 500 * time.Millisecond
)

type service struct {
	server    *server
	snapshots *ratelimit.Bucket
}

func startService(srv *server) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("name already taken")
	}

	s := &service{
		server:    srv,
		snapshots: ratelimit.NewBucket(snapshotMinPeriod, 1),
	}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")

	return nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

// TakeSnapshot captures one frame into the saved-photo slot.
func (s *service) TakeSnapshot() *dbus.Error {
	if s.snapshots.TakeAvailable(1) == 0 {
		return nil
	}
	if _, err := s.server.captureToSlot(); err != nil {
		return &dbus.Error{
			Name: dbusName + ".TakeSnapshot",
			Body: []interface{}{err.Error()},
		}
	}
	return nil
}

// Status returns the device status as JSON, with the same field names as
// the HTTP status endpoint.
func (s *service) Status() (string, *dbus.Error) {
	out, err := json.Marshal(s.server.statusSnapshot())
	if err != nil {
		return "", &dbus.Error{
			Name: dbusName + ".Status",
			Body: []interface{}{err.Error()},
		}
	}
	return string(out), nil
}
