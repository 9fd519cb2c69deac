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
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/laiyinyizao007/AutoDiary/devicestate"
)

const (
	networkAttempts = 30
	networkRetry    = time.Second
)

// joinNetwork waits for the OS to bring up the wireless interface and
// records the address and signal quality. The actual association is owned
// by the system's network manager; if no address appears the daemon keeps
// going with network-joined off.
func joinNetwork(iface string, state *devicestate.State) {
	for i := 0; i < networkAttempts; i++ {
		addr, err := interfaceAddr(iface)
		if err == nil {
			signal, sigErr := readSignalDBm(iface)
			if sigErr != nil {
				log.Printf("signal quality unavailable: %v", sigErr)
			}
			state.SetNetworkJoined(addr, signal)
			log.Printf("network joined: %s (%d dBm)", addr, signal)
			return
		}
		time.Sleep(networkRetry)
	}
	log.Printf("no address on %s, continuing without network state", iface)
}

func interfaceAddr(name string) (string, error) {
	ifc, err := net.InterfaceByName(name)
	if err != nil {
		return "", err
	}
	addrs, err := ifc.Addrs()
	if err != nil {
		return "", err
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "", fmt.Errorf("no IPv4 address on %s", name)
}

// readSignalDBm parses the interface's signal level from
// /proc/net/wireless.
func readSignalDBm(iface string) (int, error) {
	buf, err := os.ReadFile("/proc/net/wireless")
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(buf), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || !strings.HasPrefix(fields[0], iface+":") {
			continue
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			return 0, err
		}
		return int(level), nil
	}
	return 0, errors.New("interface not found in /proc/net/wireless")
}
