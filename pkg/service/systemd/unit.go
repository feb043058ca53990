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

package systemd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/billyperformance/druid/pkg/constants"
)

// unitTemplate is the unit file every Druid role is started from.
const unitTemplate = `[Unit]
Description=Druid {{ .DisplayName }} Node

[Service]
Type=simple
StandardOutput=syslog
StandardError=syslog
SyslogFacility=daemon
WorkingDirectory={{ .WorkingDirectory }}/
ExecStart={{ .Java }}{{ range .JVMOpts }} {{ . }}{{ end }} -classpath {{ .Classpath }}{{ range .MainArgs }} {{ . }}{{ end }}
SuccessExitStatus=130 143
Restart=on-failure

[Install]
WantedBy=multi-user.target
`

var unitTmpl = template.Must(template.New("unit").Parse(unitTemplate))

// UnitSpec holds everything needed to render a unit file.
type UnitSpec struct {
	DisplayName      string
	WorkingDirectory string
	Java             string
	JVMOpts          []string
	Classpath        string
	MainArgs         []string
}

// RenderUnit renders the unit file of one role. JVM options and classpath
// entries are emitted in the order given.
func RenderUnit(displayName string, jvmOpts, classpathEntries, mainArgs []string) (string, error) {
	return UnitSpec{
		DisplayName:      displayName,
		WorkingDirectory: constants.DruidHome,
		Java:             constants.JavaPath,
		JVMOpts:          jvmOpts,
		Classpath:        strings.Join(classpathEntries, constants.ClasspathSeparator),
		MainArgs:         mainArgs,
	}.Render()
}

// Render executes the unit template.
func (u UnitSpec) Render() (string, error) {
	var buf bytes.Buffer
	if err := unitTmpl.Execute(&buf, u); err != nil {
		return "", fmt.Errorf("failed to render unit for %s: %w", u.DisplayName, err)
	}
	return buf.String(), nil
}

// Classpath returns the classpath entries of a role: the working directory,
// the role's config directory, the shared config directory and the
// distribution jars.
func Classpath(roleDir string) []string {
	return []string{
		".",
		filepath.Join(constants.DruidConfigDir, roleDir) + "/",
		constants.DruidConfigDir,
		constants.DruidLibGlob,
	}
}

// MainArgs returns the main class and the arguments that start a role.
func MainArgs(namespace, serverArg string) []string {
	return []string{namespace + ".cli.Main", "server", serverArg}
}

// UnitName returns the systemd unit name of a role, without suffix.
func UnitName(name string) string {
	return constants.SystemdUnitPrefix + name
}

// UnitPath returns where the unit file of a role is written.
func UnitPath(name string) string {
	return filepath.Join(constants.SystemdUnitDir, UnitName(name)+".service")
}
