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

package compiler

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"

	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/metrics"
)

var log4jTemplate = template.Must(template.New("log4j2").Funcs(template.FuncMap{"attr": xmlAttr}).Parse(log4jSource))

// xmlAttr escapes s for use inside a double-quoted XML attribute.
func xmlAttr(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderLog4j renders the log4j2.xml shared by every role.
func (g *Generator) RenderLog4j(m *config.Model) (string, error) {
	var rendered bytes.Buffer
	if err := log4jTemplate.Execute(&rendered, m.Log4j); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	metrics.IncRenderedDocument(DocumentLog4j)
	return rendered.String(), nil
}

// The file has no trailing newline.
const log4jSource = `<?xml version="1.0" encoding="UTF-8" ?>
<Configuration status="WARN">
    <Appenders>
        <Console name="Console" target="SYSTEM_OUT">
            <PatternLayout pattern="{{attr .Pattern}}"/>
        </Console>
    </Appenders>
    <Loggers>
        <Root level="{{attr .RootLevel}}">
            <AppenderRef ref="Console"/>
        </Root>
    </Loggers>
</Configuration>`
