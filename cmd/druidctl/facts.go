// Copyright 2025 UMH Systems GmbH
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

package main

import (
	"errors"
	"net"
	"runtime"

	"github.com/billyperformance/druid/pkg/config"
)

var errNoAddress = errors.New("no non-loopback IPv4 address found, set --host-ip")

// detectFacts describes this host. Settings take precedence over detection.
func detectFacts(s Settings) (config.Facts, error) {
	facts := config.Facts{IPAddress: s.HostIP, ProcessorCount: s.ProcessorCount}
	if facts.ProcessorCount == 0 {
		facts.ProcessorCount = runtime.NumCPU()
	}
	if facts.IPAddress != "" {
		return facts, nil
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return facts, err
	}
	ip := firstAddress(ifaces, func(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() })
	if ip == "" {
		return facts, errNoAddress
	}
	facts.IPAddress = ip
	return facts, nil
}

// firstAddress returns the first IPv4 address of an up, non-loopback interface.
func firstAddress(ifaces []net.Interface, addrs func(net.Interface) ([]net.Addr, error)) string {
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		list, err := addrs(iface)
		if err != nil {
			continue
		}
		for _, addr := range list {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}
			if v4 := ipnet.IP.To4(); v4 != nil {
				return v4.String()
			}
		}
	}
	return ""
}
