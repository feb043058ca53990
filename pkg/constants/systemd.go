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

package constants

// systemd integration
const (
	// SystemdUnitDir holds the generated unit files, one per role
	SystemdUnitDir = "/etc/systemd/system"

	// SystemdUnitPrefix is prepended to the role name to form the unit name
	SystemdUnitPrefix = "druid-"

	// SystemctlPath is the binary used for daemon-reload and service control
	SystemctlPath = "/bin/systemctl"

	// JavaPath is the JVM launched by every unit
	JavaPath = "/usr/bin/java"

	// ClasspathSeparator joins classpath entries in ExecStart
	ClasspathSeparator = ":"
)
