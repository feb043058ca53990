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

package filesystem_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/billyperformance/druid/pkg/service/filesystem"
)

var _ = Describe("DefaultService", func() {
	var (
		svc *filesystem.DefaultService
		ctx context.Context
		dir string
	)

	BeforeEach(func() {
		svc = filesystem.NewDefaultService()
		ctx = context.Background()
		dir = GinkgoT().TempDir()
	})

	It("writes and reads back a file with the requested mode", func() {
		p := filepath.Join(dir, "common.runtime.properties")
		Expect(svc.WriteFile(ctx, p, []byte("druid.host=localhost\n"), 0644)).To(Succeed())

		data, err := svc.ReadFile(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("druid.host=localhost\n"))

		info, err := svc.Lstat(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0644)))
	})

	It("leaves no temporary files behind after a write", func() {
		p := filepath.Join(dir, "unit.service")
		Expect(svc.WriteFile(ctx, p, []byte("a"), 0644)).To(Succeed())
		Expect(svc.WriteFile(ctx, p, []byte("b"), 0644)).To(Succeed())

		matches, err := svc.Glob(ctx, filepath.Join(dir, "*"))
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(ConsistOf(p))
	})

	It("creates nested directories", func() {
		p := filepath.Join(dir, "etc", "druid", "broker")
		Expect(svc.EnsureDirectory(ctx, p)).To(Succeed())
		exists, err := svc.PathExists(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())
	})

	It("reports dangling links as existing and reads their target", func() {
		link := filepath.Join(dir, "druid")
		Expect(svc.Symlink(ctx, filepath.Join(dir, "missing"), link)).To(Succeed())

		exists, err := svc.PathExists(ctx, link)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())

		target, err := svc.Readlink(ctx, link)
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal(filepath.Join(dir, "missing")))
	})

	It("returns the context error when cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.ReadFile(cancelled, filepath.Join(dir, "x"))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("returns command output", func() {
		out, err := svc.ExecuteCommand(ctx, "echo", "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("hello\n"))
	})

	It("times out long-running commands", func() {
		short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := svc.ExecuteCommand(short, "sleep", "5")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("MockFileSystem", func() {
	var (
		fs  *filesystem.MockFileSystem
		ctx context.Context
	)

	BeforeEach(func() {
		fs = filesystem.NewMockFileSystem()
		ctx = context.Background()
	})

	It("refuses to write into a missing directory", func() {
		err := fs.WriteFile(ctx, "/etc/druid/broker/runtime.properties", []byte("x"), 0644)
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("stores written files", func() {
		Expect(fs.EnsureDirectory(ctx, "/etc/druid")).To(Succeed())
		Expect(fs.WriteFile(ctx, "/etc/druid/log4j2.xml", []byte("<x/>"), 0644)).To(Succeed())
		content, ok := fs.FileContent("/etc/druid/log4j2.xml")
		Expect(ok).To(BeTrue())
		Expect(content).To(Equal("<x/>"))
		Expect(fs.IsDirectory("/etc")).To(BeTrue())
	})

	It("removes a tree recursively", func() {
		fs.WithFile("/opt/druid-0.9.2/extensions/a/a.jar", "").
			WithFile("/opt/druid-0.9.2/extensions/b.jar", "")
		Expect(fs.RemoveAll(ctx, "/opt/druid-0.9.2/extensions")).To(Succeed())
		matches, err := fs.Glob(ctx, "/opt/druid-0.9.2/*")
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(BeEmpty())
	})

	It("describes links with Lstat", func() {
		fs.WithLink("/opt/druid", "/opt/druid-0.9.2")
		info, err := fs.Lstat(ctx, "/opt/druid")
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode() & os.ModeSymlink).NotTo(BeZero())
		target, ok := fs.LinkTarget("/opt/druid")
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal("/opt/druid-0.9.2"))
	})

	It("records commands and returns canned results", func() {
		fs.WithCommandResult("/bin/systemctl is-active druid-broker", "inactive\n", errors.New("exit status 3"))
		out, err := fs.ExecuteCommand(ctx, "/bin/systemctl", "is-active", "druid-broker")
		Expect(err).To(MatchError("exit status 3"))
		Expect(string(out)).To(Equal("inactive\n"))

		_, err = fs.ExecuteCommand(ctx, "/bin/systemctl", "daemon-reload")
		Expect(err).NotTo(HaveOccurred())
		Expect(fs.CommandLines()).To(Equal([]string{
			"/bin/systemctl is-active druid-broker",
			"/bin/systemctl daemon-reload",
		}))
	})

	It("lets hooks override stateful behaviour", func() {
		fs.WriteFileFunc = func(context.Context, string, []byte, os.FileMode) error {
			return errors.New("disk full")
		}
		Expect(fs.WriteFile(ctx, "/x", nil, 0644)).To(MatchError("disk full"))
	})
})
