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

import "time"

// Druid configuration layout on the host
const (
	// DruidConfigDir is the shared configuration root, every role directory lives below it
	DruidConfigDir = "/etc/druid"

	// CommonPropertiesFileName is the name of the shared property file, both in DruidConfigDir
	// and as a symlink inside every role directory
	CommonPropertiesFileName = "common.runtime.properties"

	// RuntimePropertiesFileName is the name of the role-specific property file
	RuntimePropertiesFileName = "runtime.properties"

	// Log4jFileName is the name of the shared log4j2 configuration
	Log4jFileName = "log4j2.xml"

	// DruidHome is the symlink pointing at the extracted distribution
	DruidHome = "/opt/druid"

	// DruidInstallBaseDir is where distributions are extracted to
	DruidInstallBaseDir = "/opt"

	// ArchiveCacheDir is where downloaded distribution archives are kept
	ArchiveCacheDir = "/var/tmp"

	// DruidLibGlob is the classpath entry for the distribution jars
	DruidLibGlob = DruidHome + "/lib/*"
)

// Version boundary for the package namespace switch
const (
	// ModernNamespaceMinVersion is the first release published under org.apache.druid
	ModernNamespaceMinVersion = "0.13.0"

	LegacyNamespace = "io.druid"
	ModernNamespace = "org.apache.druid"
)

// Distribution download locations
const (
	LegacyReleaseBaseURL = "http://static.druid.io/artifacts/releases"
	ModernReleaseBaseURL = "https://archive.apache.org/dist/incubator/druid"
)

// ManagedBy is written into the preamble of every generated property file
const ManagedBy = "druidctl"

// DefaultAppVersion is the version reported by development builds
const DefaultAppVersion = "0.0.0-dev"

const (
	// DownloadRetries is how often a failed archive download is retried
	DownloadRetries = 3

	// DownloadRetryInterval is the initial wait before retrying a download, doubled per attempt
	DownloadRetryInterval = time.Second * 2
)
