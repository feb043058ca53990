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

package compiler_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/billyperformance/druid/pkg/compiler"
	"github.com/billyperformance/druid/pkg/config"
)

const sharedHead = preamble +
	"# Extensions\n" +
	"druid.extensions.remoteRepositories=[\"http://repo1.maven.org/maven2/\", \"https://metamx.artifactoryonline.com/metamx/pub-libs-releases-local\"]\n" +
	"druid.extensions.localRepository=~/.m2/repository\n" +
	"druid.extensions.coordinates=[]\n" +
	"druid.extensions.searchCurrentClassloader=true\n" +
	"druid.extensions.hadoopDependenciesDir=/opt/druid/hadoop-dependencies\n" +
	"\n" +
	"# Zookeeper\n" +
	"druid.zk.paths.base=/druid\n" +
	"druid.zk.service.host=localhost\n" +
	"druid.zk.service.sessionTimeoutMs=30000\n" +
	"druid.curator.compress=true\n" +
	"druid.discovery.curator.path=/druid/discovery\n" +
	"\n"

const defaultRequestLogging = "# Request Logging\n" +
	"druid.request.logging.type=noop\n" +
	"\n"

const defaultMetrics = "# Enabling Metrics\n" +
	"druid.monitoring.emissionPeriod=PT1m\n" +
	"\n" +
	"# Emitting Metrics\n" +
	"druid.emitter=logging\n" +
	"druid.emitter.logging.loggerClass=LoggingEmitter\n" +
	"druid.emitter.logging.logLevel=info\n" +
	"\n"

const defaultStorage = "# Metadata Storage\n" +
	"druid.metadata.storage.type=mysql\n" +
	"druid.metadata.storage.connector.connectURI=jdbc:mysql://localhost:3306/druid?characterEncoding=UTF-8\n" +
	"druid.metadata.storage.connector.user=druid\n" +
	"druid.metadata.storage.connector.password=insecure_pass\n" +
	"druid.metadata.storage.connector.createTables=true\n" +
	"druid.metadata.storage.tables.base=druid\n" +
	"druid.metadata.storage.tables.segmentTable=druid_segments\n" +
	"druid.metadata.storage.tables.ruleTable=druid_rules\n" +
	"druid.metadata.storage.tables.configTable=druid_config\n" +
	"druid.metadata.storage.tables.tasks=druid_tasks\n" +
	"druid.metadata.storage.tables.taskLog=druid_taskLog\n" +
	"druid.metadata.storage.tables.taskLock=druid_taskLock\n" +
	"druid.metadata.storage.tables.audit=druid_audit\n" +
	"\n" +
	"# Deep Storage\n" +
	"druid.storage.type=local\n" +
	"druid.storage.storageDirectory=/tmp/druid/localStorage\n" +
	"\n"

const defaultCache = "# Caching\n" +
	"druid.cache.type=local\n" +
	"druid.cache.sizeInBytes=0\n" +
	"druid.cache.initialSize=500000\n" +
	"druid.cache.logEvictionCount=0\n" +
	"\n"

const sharedTail = "# Indexing Service Discovery\n" +
	"druid.selectors.indexing.serviceName=druid/overlord\n" +
	"\n" +
	"# Coordinator Service Discovery\n" +
	"druid.selectors.coordinator.serviceName=druid/coordinator\n" +
	"\n" +
	"# Logging\n" +
	"# #\n" +
	"#\n" +
	"# # Log all runtime properties on startup. Disable to avoid logging properties on startup:\n" +
	"\n" +
	"druid.startup.logging.logProperties=true\n" +
	"#\n" +
	"# Announcing Segments\n" +
	"druid.announcer.type=batch\n" +
	"druid.announcer.segmentsPerNode=50\n" +
	"druid.announcer.maxBytesPerNode=524288\n" +
	"# Task Logging\n" +
	"druid.indexer.logs.type=file\n" +
	"druid.indexer.logs.directory=/var/log\n"

func cacheSection(out string) string {
	start := strings.Index(out, "# Caching\n")
	end := strings.Index(out, "# Indexing Service Discovery\n")
	return out[start:end]
}

var _ = Describe("RenderShared", func() {
	var gen *compiler.Generator

	BeforeEach(func() {
		gen = compiler.NewGenerator()
	})

	It("renders the defaults byte for byte", func() {
		out := gen.RenderShared(mustModel(nil))
		Expect(out).To(Equal(sharedHead + defaultRequestLogging + defaultMetrics + defaultStorage + defaultCache + sharedTail))
	})

	It("is deterministic", func() {
		m := mustModel(config.Params{"monitoring_monitors": []any{"b", "a"}})
		Expect(gen.RenderShared(m)).To(Equal(gen.RenderShared(m)))
	})

	Describe("caching", func() {
		It("never emits memcached or caffeine keys for the local cache", func() {
			section := cacheSection(gen.RenderShared(mustModel(config.Params{
				"cache_type":             "local",
				"cache_expire_after":     int64(300),
				"cache_memcached_prefix": "other",
			})))
			Expect(section).NotTo(ContainSubstring("memcachedPrefix"))
			Expect(section).NotTo(ContainSubstring("expireAfter"))
		})

		It("emits exactly the caffeine keys", func() {
			section := cacheSection(gen.RenderShared(mustModel(config.Params{
				"cache_type":          "caffeine",
				"cache_size_in_bytes": int64(2048),
				"cache_expire_after":  int64(300),
			})))
			Expect(section).To(Equal("# Caching\n" +
				"druid.cache.type=caffeine\n" +
				"druid.cache.sizeInBytes=2048\n" +
				"druid.cache.expireAfter=300\n" +
				"\n"))
		})

		It("joins memcached hosts without brackets", func() {
			section := cacheSection(gen.RenderShared(mustModel(config.Params{
				"cache_type":             "memcached",
				"cache_expiration":       int64(2592002),
				"cache_timeout":          int64(501),
				"cache_hosts":            []any{"127.0.0.1:1221", "192.168.0.10:1122"},
				"cache_max_object_size":  int64(52428802),
				"cache_memcached_prefix": "druid-test",
			})))
			Expect(section).To(Equal("# Caching\n" +
				"druid.cache.type=memcached\n" +
				"druid.cache.expiration=2592002\n" +
				"druid.cache.timeout=501\n" +
				"druid.cache.hosts=127.0.0.1:1221,192.168.0.10:1122\n" +
				"druid.cache.maxObjectSize=52428802\n" +
				"druid.cache.memcachedPrefix=druid-test\n" +
				"\n"))
		})
	})

	It("renders the filtered request logger with an inline delegate", func() {
		out := gen.RenderShared(mustModel(config.Params{
			"version":              "0.14.2",
			"package_name":         "org.apache.druid",
			"request_logging_type": "filtered",
			"request_logging_query_time_threshold_ms":     int64(1000),
			"request_logging_sql_query_time_threshold_ms": int64(1000),
			"request_logging_delegate_type":               config.NewObject("type", "slf4j"),
		}))
		Expect(out).To(ContainSubstring("# Request Logging\n" +
			"druid.request.logging.type=filtered\n" +
			"druid.request.logging.queryTimeThresholdMs=1000\n" +
			"druid.request.logging.sqlQueryTimeThresholdMs=1000\n" +
			"druid.request.logging.delegate={\"type\":\"slf4j\"}\n" +
			"\n# Enabling Metrics\n"))
	})

	It("renders the graphite emitter with the converter in insertion order", func() {
		out := gen.RenderShared(mustModel(config.Params{
			"emitter":                    "graphite",
			"emitter_graphite_hostname":  "graphitehost.com",
			"emitter_graphite_port":      int64(2004),
			"emitter_graphite_batchSize": int64(200),
			"emitter_graphite_eventConverter": config.NewObject(
				"type", "whiteList",
				"namespacePrefix", "someprefix",
				"ignoreHostname", false,
				"ignoreServiceName", false,
				"mapPath", "/somefile.json",
			),
			"emitter_graphite_flushPeriod": int64(120000),
		}))
		Expect(out).To(ContainSubstring("# Emitting Metrics\n" +
			"druid.emitter=graphite\n" +
			"druid.emitter.graphite.hostname=graphitehost.com\n" +
			"druid.emitter.graphite.port=2004\n" +
			"druid.emitter.graphite.batchSize=200\n" +
			"druid.emitter.graphite.eventConverter={\"type\":\"whiteList\",\"namespacePrefix\":\"someprefix\",\"ignoreHostname\":false,\"ignoreServiceName\":false,\"mapPath\":\"/somefile.json\"}\n" +
			"druid.emitter.graphite.flushPeriod=120000\n" +
			"\n"))
		Expect(out).NotTo(ContainSubstring("druid.emitter.logging"))
	})

	It("keeps query strings in repository URLs verbatim", func() {
		out := gen.RenderShared(mustModel(config.Params{
			"extensions_remote_repositories": []any{"https://repo.example.com/maven?a=1&b=<2>"},
		}))
		Expect(out).To(ContainSubstring(`druid.extensions.remoteRepositories=["https://repo.example.com/maven?a=1&b=<2>"]` + "\n"))
	})

	It("renders custom extensions, zookeeper paths and s3 deep storage", func() {
		out := gen.RenderShared(mustModel(config.Params{
			"extensions_remote_repositories":        []any{"http://repo1.maven.org/maven2/"},
			"extensions_local_repository":           "~/.m2-test/repository",
			"extensions_coordinates":                []any{"groupID;artifactID:version"},
			"extensions_default_version":            "test",
			"extensions_search_current_classloader": false,
			"zk_paths_properties_path":              "/druid/1",
			"zk_paths_indexer_leader_latch_path":    "/druid/10",
			"monitoring_monitors":                   []any{"mode"},
			"storage_type":                          "s3",
			"s3_access_key":                         "key3",
			"s3_secret_key":                         "key2",
			"s3_bucket":                             "druid",
			"s3_base_key":                           "key1",
			"storage_disable_acl":                   true,
			"s3_archive_bucket":                     "druid-archive",
			"s3_archive_base_key":                   "druid-base-key",
			"announcer_type":                        "legacy",
		}))
		Expect(out).To(ContainSubstring("# Extensions\n" +
			"druid.extensions.remoteRepositories=[\"http://repo1.maven.org/maven2/\"]\n" +
			"druid.extensions.localRepository=~/.m2-test/repository\n" +
			"druid.extensions.coordinates=[\"groupID;artifactID:version\"]\n" +
			"druid.extensions.defaultVersion=test\n" +
			"druid.extensions.searchCurrentClassloader=false\n"))
		Expect(out).To(ContainSubstring("druid.curator.compress=true\n" +
			"druid.zk.paths.propertiesPath=/druid/1\n" +
			"druid.zk.paths.indexer.leaderLatchPath=/druid/10\n" +
			"druid.discovery.curator.path=/druid/discovery\n"))
		Expect(out).To(ContainSubstring("druid.monitoring.monitors=[\"mode\"]\n"))
		Expect(out).To(ContainSubstring("# Deep Storage\n" +
			"druid.storage.type=s3\n" +
			"druid.s3.accessKey=key3\n" +
			"druid.s3.secretKey=key2\n" +
			"druid.storage.bucket=druid\n" +
			"druid.storage.baseKey=key1\n" +
			"druid.storage.disableAcl=true\n" +
			"druid.storage.archiveBucket=druid-archive\n" +
			"druid.storage.archiveBaseKey=druid-base-key\n" +
			"\n"))
		Expect(out).NotTo(ContainSubstring("druid.storage.storageDirectory"))
		Expect(out).To(HaveSuffix("# Announcing Segments\n" +
			"druid.announcer.type=legacy\n" +
			"# Task Logging\n" +
			"druid.indexer.logs.type=file\n" +
			"druid.indexer.logs.directory=/var/log\n"))
	})
})

var _ = Describe("RenderLog4j", func() {
	It("renders the console appender without a trailing newline", func() {
		out, err := compiler.NewGenerator().RenderLog4j(mustModel(nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("<?xml version=\"1.0\" encoding=\"UTF-8\" ?>\n" +
			"<Configuration status=\"WARN\">\n" +
			"    <Appenders>\n" +
			"        <Console name=\"Console\" target=\"SYSTEM_OUT\">\n" +
			"            <PatternLayout pattern=\"%d{ISO8601} %p [%t] %c - %m%n\"/>\n" +
			"        </Console>\n" +
			"    </Appenders>\n" +
			"    <Loggers>\n" +
			"        <Root level=\"info\">\n" +
			"            <AppenderRef ref=\"Console\"/>\n" +
			"        </Root>\n" +
			"    </Loggers>\n" +
			"</Configuration>"))
	})

	It("escapes markup in the pattern attribute", func() {
		out, err := compiler.NewGenerator().RenderLog4j(mustModel(config.Params{
			"log4j_pattern": `%d "%c" <%m> & %n`,
		}))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(`<PatternLayout pattern="%d &#34;%c&#34; &lt;%m&gt; &amp; %n"/>`))
	})
})
