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

package config_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/billyperformance/druid/pkg/config"
)

var localhost = config.Facts{IPAddress: "127.0.0.1", ProcessorCount: 4}

var _ = Describe("Validate", func() {
	It("accepts the defaults", func() {
		model, err := config.Validate(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(model.InstallVersion).To(Equal("0.9.2"))
		Expect(model.PackageNamespace).To(Equal(config.NamespaceLegacy))
		Expect(model.Cache).To(Equal(config.LocalCache{SizeInBytes: 0, InitialSize: 500000, LogEvictionCount: 0}))
		Expect(model.DeepStorage).To(Equal(config.LocalStorage{Directory: "/tmp/druid/localStorage"}))
		Expect(model.Emitter).To(Equal(config.LoggingEmitter{LoggerClass: "LoggingEmitter", LogLevel: "info"}))
		Expect(model.RequestLogging).To(Equal(config.NoopRequestLogging{}))
		Expect(model.TaskLogs).To(Equal(config.FileTaskLogs{Directory: "/var/log"}))
		Expect(model.Extensions.DefaultVersion).To(BeNil())
	})

	Describe("namespace and version", func() {
		It("rejects the modern namespace on a legacy version", func() {
			_, err := config.Validate(config.Params{"version": "0.9.2", "package_name": "org.apache.druid"})

			var compat *config.CompatibilityError
			Expect(errors.As(err, &compat)).To(BeTrue())
			Expect(compat.Value).To(Equal("org.apache.druid"))
			Expect(err.Error()).To(ContainSubstring(`"org.apache.druid" does not match ["^io\.druid$"]`))
		})

		It("rejects the legacy namespace on a modern version", func() {
			_, err := config.Validate(config.Params{"version": "0.14.2", "package_name": "io.druid"})

			var compat *config.CompatibilityError
			Expect(errors.As(err, &compat)).To(BeTrue())
			Expect(compat.Value).To(Equal("io.druid"))
			Expect(compat.Pattern).To(ContainSubstring(`org\.apache\.druid`))
		})

		DescribeTable("namespace boundary",
			func(version, namespace string, ok bool) {
				err := config.CheckNamespace(version, namespace)
				if ok {
					Expect(err).NotTo(HaveOccurred())
				} else {
					Expect(err).To(HaveOccurred())
				}
			},
			Entry("0.12.3 legacy", "0.12.3", "io.druid", true),
			Entry("0.12.3 modern", "0.12.3", "org.apache.druid", false),
			Entry("0.13.0 modern", "0.13.0", "org.apache.druid", true),
			Entry("0.13.0 legacy", "0.13.0", "io.druid", false),
			Entry("0.13.0-incubating modern", "0.13.0-incubating", "org.apache.druid", false),
			Entry("0.14.2 modern", "0.14.2", "org.apache.druid", true),
		)

		It("reports an unparseable version as a type mismatch", func() {
			_, err := config.Validate(config.Params{"version": "latest"})
			var tm *config.TypeMismatchError
			Expect(errors.As(err, &tm)).To(BeTrue())
			Expect(tm.Param).To(Equal("version"))
		})
	})

	Describe("type checks", func() {
		It("names the field, the value and the expected type", func() {
			_, err := config.Validate(config.Params{"zk_service_host": []any{"a", "b"}})
			var tm *config.TypeMismatchError
			Expect(errors.As(err, &tm)).To(BeTrue())
			Expect(err.Error()).To(Equal(`parameter 'zk_service_host': ["a", "b"] is not a string`))
		})

		It("collects every mismatch in one pass", func() {
			_, err := config.Validate(config.Params{
				"curator_compress":    "yes",
				"cache_size_in_bytes": "big",
				"cache_hosts":         "a:1",
			})
			var all config.ValidationErrors
			Expect(errors.As(err, &all)).To(BeTrue())
			Expect(all).To(HaveLen(3))
		})

		It("rejects lists with foreign elements", func() {
			_, err := config.Validate(config.Params{"monitoring_monitors": []any{"a", int64(1)}})
			Expect(err).To(MatchError(ContainSubstring("is not an array of strings")))
		})

		It("rejects unknown parameters", func() {
			_, err := config.Validate(config.Params{"cache_flavour": "vanilla"})
			var up *config.UnknownParameterError
			Expect(errors.As(err, &up)).To(BeTrue())
			Expect(up.Param).To(Equal("cache_flavour"))
		})
	})

	Describe("enumerations", func() {
		DescribeTable("rejects values outside the declared set",
			func(param, value string) {
				_, err := config.Validate(config.Params{param: value})
				var ev *config.EnumViolationError
				Expect(errors.As(err, &ev)).To(BeTrue())
				Expect(ev.Param).To(Equal(param))
				Expect(ev.Value).To(Equal(value))
			},
			Entry("cache type", "cache_type", "redis"),
			Entry("storage type", "storage_type", "gcs"),
			Entry("emitter type", "emitter", "statsd"),
			Entry("announcer type", "announcer_type", "eager"),
			Entry("request logging type", "request_logging_type", "kafka"),
			Entry("metadata storage type", "metadata_storage_type", "oracle"),
			Entry("task log type", "indexer_logs_type", "azure"),
		)
	})

	Describe("unions", func() {
		It("drops fields that belong to another cache type", func() {
			model, err := config.Validate(config.Params{
				"cache_type":          "caffeine",
				"cache_size_in_bytes": int64(2048),
				"cache_expire_after":  int64(300),
			})
			Expect(err).NotTo(HaveOccurred())
			expire := int64(300)
			Expect(model.Cache).To(Equal(config.CaffeineCache{SizeInBytes: 2048, ExpireAfter: &expire}))
		})

		It("builds a graphite emitter with its converter", func() {
			model, err := config.Validate(config.Params{
				"emitter":                         "graphite",
				"emitter_graphite_hostname":       "graphite.local",
				"emitter_graphite_port":           int64(2003),
				"emitter_graphite_eventConverter": config.NewObject("type", "all"),
			})
			Expect(err).NotTo(HaveOccurred())
			g, ok := model.Emitter.(config.GraphiteEmitter)
			Expect(ok).To(BeTrue())
			Expect(g.Hostname).To(Equal("graphite.local"))
			Expect(g.Port).To(Equal(int64(2003)))
			Expect(g.BatchSize).To(BeNil())
		})

		DescribeTable("requires the selected variant's mandatory fields",
			func(params config.Params, missing string) {
				_, err := config.Validate(params)
				var rf *config.RequiredFieldMissingError
				Expect(errors.As(err, &rf)).To(BeTrue())
				Expect(rf.Param).To(Equal(missing))
			},
			Entry("memcached hosts", config.Params{"cache_type": "memcached"}, "cache_hosts"),
			Entry("s3 bucket", config.Params{"storage_type": "s3"}, "s3_bucket"),
			Entry("hdfs directory", config.Params{"storage_type": "hdfs"}, "hdfs_directory"),
			Entry("http recipient", config.Params{"emitter": "http"}, "emitter_http_recipient_base_url"),
			Entry("graphite hostname", config.Params{"emitter": "graphite", "emitter_graphite_port": 2003}, "emitter_graphite_hostname"),
			Entry("file request log dir", config.Params{"request_logging_type": "file"}, "request_logging_dir"),
			Entry("filtered delegate", config.Params{"request_logging_type": "filtered"}, "request_logging_delegate_type"),
		)
	})
})

var _ = Describe("ValidateRole", func() {
	It("defaults the host from the facts", func() {
		rc, err := config.ValidateRole(config.RoleBroker, localhost, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rc.Node.Host).To(Equal("127.0.0.1"))
		Expect(rc.Node.Port).To(Equal(int64(8082)))
		Expect(rc.Node.Service).To(Equal("druid/broker"))
		Expect(rc.Settings).To(BeAssignableToTypeOf(&config.BrokerConfig{}))
	})

	It("keeps jvm options verbatim and in order", func() {
		opts := []any{"-server", "-Xmx1g", "-Duser.timezone=PDT"}
		rc, err := config.ValidateRole(config.RoleRouter, localhost, config.Params{"jvm_opts": opts})
		Expect(err).NotTo(HaveOccurred())
		Expect(rc.Node.JVMOpts).To(Equal([]string{"-server", "-Xmx1g", "-Duser.timezone=PDT"}))
	})

	It("rejects an unknown select tier", func() {
		_, err := config.ValidateRole(config.RoleBroker, localhost, config.Params{"select_tier": "closest"})
		var ev *config.EnumViolationError
		Expect(errors.As(err, &ev)).To(BeTrue())
		Expect(ev.Allowed).To(ConsistOf("highestPriority", "lowestPriority", "custom"))
	})

	It("requires priorities for the custom tier strategy", func() {
		_, err := config.ValidateRole(config.RoleBroker, localhost, config.Params{"select_tier": "custom"})
		Expect(err).To(MatchError(ContainSubstring("select_tier_custom_priorities")))
	})

	It("rejects parameters of another role", func() {
		_, err := config.ValidateRole(config.RoleCoordinator, localhost, config.Params{"select_tier": "custom"})
		var up *config.UnknownParameterError
		Expect(errors.As(err, &up)).To(BeTrue())
		Expect(up.Error()).To(Equal("coordinator has no parameter named 'select_tier'"))
	})

	It("rejects an out of range port", func() {
		_, err := config.ValidateRole(config.RoleHistorical, localhost, config.Params{"port": 70000})
		var ce *config.ConstraintError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Param).To(Equal("port"))
	})

	It("folds overlord runner parameters into the remote runner", func() {
		rc, err := config.ValidateRole(config.RoleOverlord, localhost, config.Params{"runner_type": "remote"})
		Expect(err).NotTo(HaveOccurred())
		ov := rc.Settings.(*config.OverlordConfig)
		Expect(ov.Runner).To(Equal(config.RemoteRunner{
			CompressZnodes:        true,
			MinWorkerVersion:      "0",
			MaxZnodeBytes:         524288,
			TaskAssignmentTimeout: "PT5M",
			TaskCleanupTimeout:    "PT15M",
		}))
		Expect(ov.Storage).To(Equal(config.LocalTaskStorage{}))
	})

	It("sizes middle manager capacity from the processor count", func() {
		rc, err := config.ValidateRole(config.RoleMiddleManager, config.Facts{IPAddress: "10.0.0.1", ProcessorCount: 8}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(rc.Settings.(*config.MiddleManagerConfig).WorkerCapacity).To(Equal(int64(7)))
	})

	It("parses role names", func() {
		r, err := config.ParseRole("middle_manager")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.ServerArg()).To(Equal("middleManager"))
		Expect(r.DisplayName()).To(Equal("Middle Manager"))

		_, err = config.ParseRole("peon")
		Expect(err).To(HaveOccurred())
	})
})
