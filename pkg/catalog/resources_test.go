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

package catalog_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/billyperformance/druid/internal/fsm"
	"github.com/billyperformance/druid/pkg/catalog"
	"github.com/billyperformance/druid/pkg/service/filesystem"
	"github.com/billyperformance/druid/pkg/service/systemd"
)

var _ = Describe("Resources", func() {
	var (
		fs  *filesystem.MockFileSystem
		ctx context.Context
	)

	BeforeEach(func() {
		fs = filesystem.NewMockFileSystem()
		ctx = context.Background()
	})

	Describe("File", func() {
		It("detects identical content", func() {
			fs.WithFile("/etc/druid/x", "a=b\n")
			inSync, err := catalog.NewFile(fs, "/etc/druid/x", "a=b\n").Check(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(inSync).To(BeTrue())
		})

		It("rewrites different content", func() {
			fs.WithFile("/etc/druid/x", "a=b\n")
			f := catalog.NewFile(fs, "/etc/druid/x", "a=c\n")
			inSync, err := f.Check(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(inSync).To(BeFalse())
			Expect(f.Apply(ctx)).To(Succeed())
			content, _ := fs.FileContent("/etc/druid/x")
			Expect(content).To(Equal("a=c\n"))
		})

		It("replaces a link with a file", func() {
			fs.WithLink("/etc/druid/x", "/elsewhere")
			f := catalog.NewFile(fs, "/etc/druid/x", "v")
			inSync, err := f.Check(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(inSync).To(BeFalse())
			Expect(f.Apply(ctx)).To(Succeed())
			_, isLink := fs.LinkTarget("/etc/druid/x")
			Expect(isLink).To(BeFalse())
		})
	})

	Describe("Link", func() {
		It("is in sync only with the right target", func() {
			fs.WithLink("/etc/druid/broker/common.runtime.properties", "/etc/druid/old")
			l := catalog.NewLink(fs, "/etc/druid/broker/common.runtime.properties", "/etc/druid/common.runtime.properties")
			inSync, err := l.Check(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(inSync).To(BeFalse())

			Expect(l.Apply(ctx)).To(Succeed())
			inSync, err = l.Check(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(inSync).To(BeTrue())
		})
	})

	Describe("Directory", func() {
		It("creates missing directories", func() {
			d := catalog.NewDirectory(fs, "/etc/druid/broker")
			Expect(d.Apply(ctx)).To(Succeed())
			Expect(fs.IsDirectory("/etc/druid/broker")).To(BeTrue())
		})
	})

	Describe("Exec", func() {
		It("is satisfied by its creates path", func() {
			fs.WithDirectory("/opt/druid-0.9.2")
			e := catalog.NewExec(fs, "extract", "tar", "-xzf", "/var/tmp/a.tar.gz")
			e.Creates = "/opt/druid-0.9.2"
			inSync, err := e.Check(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(inSync).To(BeTrue())
		})

		It("reports command output on failure", func() {
			fs.WithCommandResult("/bin/false", "nope", errors.New("exit status 1"))
			e := catalog.NewExec(fs, "fail", "/bin/false")
			Expect(e.Apply(ctx)).To(MatchError(ContainSubstring("output: nope")))
		})
	})

	Describe("Service", func() {
		var sd *systemd.MockService

		BeforeEach(func() {
			sd = systemd.NewMockService()
		})

		It("enables and starts a stopped unit", func() {
			s := catalog.NewService(sd, "druid-broker")
			inSync, err := s.Check(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(inSync).To(BeFalse())
			Expect(s.Apply(ctx)).To(Succeed())
			Expect(sd.CallLog()).To(Equal([]string{"enable druid-broker", "start druid-broker"}))
		})

		It("restarts a running unit on refresh", func() {
			sd.Enabled["druid-broker"] = true
			sd.Active["druid-broker"] = true
			Expect(catalog.NewService(sd, "druid-broker").Refresh(ctx)).To(Succeed())
			Expect(sd.CallLog()).To(Equal([]string{"restart druid-broker"}))
		})

		It("starts instead of restarting a stopped unit on refresh", func() {
			sd.Enabled["druid-broker"] = true
			Expect(catalog.NewService(sd, "druid-broker").Refresh(ctx)).To(Succeed())
			Expect(sd.CallLog()).To(Equal([]string{"start druid-broker"}))
		})

		It("is refreshed through a subscription", func() {
			sd.Enabled["druid-broker"] = true
			sd.Active["druid-broker"] = true
			fs.WithDirectory("/etc/systemd/system")

			cat := catalog.New("svc")
			unit := catalog.NewFile(fs, "/etc/systemd/system/druid-broker.service", "[Unit]\n")
			Expect(cat.Add(unit)).To(Succeed())
			Expect(cat.Add(catalog.NewService(sd, "druid-broker"),
				catalog.Requires(unit.Ref()), catalog.Subscribes(unit.Ref()))).To(Succeed())

			report, err := cat.Apply(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.State(catalog.ServiceRef("druid-broker"))).To(Equal(fsm.StateChanged))
			Expect(sd.CallLog()).To(Equal([]string{"restart druid-broker"}))
		})
	})
})
