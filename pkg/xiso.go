// Package pkg provides functionality for processing Xbox disc images.
// This file contains the XISO processor that extracts the default XBE,
// injects it into the attach XBE and splits oversized images.
package pkg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hansbonini/xisotools/pkg/common"
	"github.com/hansbonini/xisotools/pkg/xbox"
	"github.com/spf13/afero"
)

// XISOProcessor prepares XDVDFS images for storage with a file size ceiling
type XISOProcessor struct {
	fs       afero.Fs
	options  Options
	stub     StubProvider
	injector Injector
}

// NewXISOProcessor creates a processor working on fs
func NewXISOProcessor(fs afero.Fs, options Options, stub StubProvider, injector Injector) *XISOProcessor {
	return &XISOProcessor{
		fs:       fs,
		options:  options,
		stub:     stub,
		injector: injector,
	}
}

// analysis is what SplitFile learns from the image before moving it
type analysis struct {
	plan        *SplitPlan
	xbeFound    bool
	certificate *xbox.Certificate
}

// SplitDir processes every .iso file of dir. A failing image is logged and
// recorded in its result without stopping the remaining ones.
func (p *XISOProcessor) SplitDir(dir string) ([]ItemResult, error) {
	infos, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToReadImageDir, dir, err)
	}

	var images []string
	for _, info := range infos {
		if info.Mode().IsRegular() && strings.EqualFold(filepath.Ext(info.Name()), ".iso") {
			images = append(images, filepath.Join(dir, info.Name()))
		}
	}

	// Images whose names differ only by extension share an output directory;
	// only the first one of them gets it.
	sharedWith := make([]string, len(images))
	claimed := make(map[string]string)
	for i, image := range images {
		outputDir, err := p.outputDir(image)
		if err != nil {
			continue
		}
		if owner, ok := claimed[outputDir]; ok {
			sharedWith[i] = owner
			continue
		}
		claimed[outputDir] = image
	}

	results := make([]ItemResult, len(images))
	jobs := p.options.Jobs
	if jobs < 1 {
		jobs = 1
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = p.splitItem(images[i], sharedWith[i])
			}
		}()
	}
	for i := range images {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	failed := 0
	for _, result := range results {
		if result.Layout == LayoutFailed {
			failed++
		}
	}
	common.LogInfo(common.InfoBatchFinished, len(results), len(results)-failed, failed)

	return results, nil
}

// splitItem runs SplitFile and turns a failure into a recorded result.
// An image whose output directory belongs to owner is failed without being touched.
func (p *XISOProcessor) splitItem(imagePath, owner string) ItemResult {
	common.LogInfo(common.InfoProcessingImage, imagePath)

	var result *ItemResult
	var err error
	if owner != "" {
		result = &ItemResult{Image: imagePath}
		err = common.FormatErrorString(common.ErrOutputDirShared, "%s", owner)
	} else {
		result, err = p.SplitFile(imagePath)
	}
	if err != nil {
		if errors.Is(err, xbox.ErrNotXDVDFS) {
			common.LogWarn(common.InfoImageNotXDVDFS, imagePath)
		} else {
			common.LogError(common.ErrImageFailed, imagePath, err)
		}
		result.Layout = LayoutFailed
		result.Error = err.Error()
	}
	return *result
}

// SplitFile prepares a single image. It creates a directory named after the
// image next to it, writes the attach XBE there with the certificate of the
// image's default XBE, then either moves the image into that directory or
// splits it into two fragments and keeps the original in a holding directory.
// The returned result is never nil, even when an error is returned.
func (p *XISOProcessor) SplitFile(imagePath string) (*ItemResult, error) {
	result := &ItemResult{Image: imagePath}

	outputDir, err := p.outputDir(imagePath)
	if err != nil {
		return result, err
	}
	result.OutputDir = outputDir

	if err := p.fs.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("%s %s: %w", common.ErrFailedToCreateOutputDir, outputDir, err)
	}
	if err := p.ensureOutputsAbsent(imagePath, outputDir); err != nil {
		return result, err
	}

	stub, err := p.stub.DefaultXBE()
	if err != nil {
		return result, common.FormatError(common.ErrFailedToLoadAttachXBE, err)
	}
	xbePath := filepath.Join(outputDir, p.options.Names.XBE)
	if err := afero.WriteFile(p.fs, xbePath, stub, 0o644); err != nil {
		return result, fmt.Errorf("%s %s: %w", common.ErrFailedToWriteAttachXBE, xbePath, err)
	}

	info, err := p.analyze(imagePath, outputDir, xbePath)
	if err != nil {
		return result, err
	}
	result.Size = info.plan.TotalSize
	result.XBEFound = info.xbeFound
	if info.certificate != nil {
		result.TitleID = fmt.Sprintf("%08X", info.certificate.TitleID)
		result.TitleName = info.certificate.TitleName
	}

	if p.options.NoSplit || !NeedsSplit(info.plan.TotalSize, p.options.MaxSize) {
		target := filepath.Join(outputDir, p.options.Names.Image)
		if err := p.ensureAbsent(target); err != nil {
			return result, err
		}
		if err := p.fs.Rename(imagePath, target); err != nil {
			return result, fmt.Errorf("%s %s -> %s: %w", common.ErrFailedToMoveImage, imagePath, target, err)
		}
		common.LogInfo(common.InfoImageMoved, imagePath, target)
		result.Layout = LayoutRenamed
		result.Parts = []string{target}
		return result, nil
	}

	parts, err := p.split(imagePath, outputDir, info.plan)
	if err != nil {
		return result, err
	}
	result.Layout = LayoutSplit
	result.SplitSector = info.plan.SplitSector
	result.Parts = parts
	return result, nil
}

// outputDir returns the directory named after the image, next to it
func (p *XISOProcessor) outputDir(imagePath string) (string, error) {
	base := filepath.Base(imagePath)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return "", common.FormatErrorString(common.ErrImageWithoutExtension, imagePath)
	}
	return filepath.Join(filepath.Dir(imagePath), strings.TrimSuffix(base, ext)), nil
}

// ensureOutputsAbsent fails when any file the image would be moved or split
// into already exists, so no earlier output is ever replaced
func (p *XISOProcessor) ensureOutputsAbsent(imagePath, outputDir string) error {
	names := p.options.Names
	for _, path := range []string{
		filepath.Join(outputDir, names.Image),
		filepath.Join(outputDir, names.FirstPart),
		filepath.Join(outputDir, names.SecondPart),
		filepath.Join(outputDir, names.Holding, filepath.Base(imagePath)),
	} {
		if err := p.ensureAbsent(path); err != nil {
			return err
		}
	}
	return nil
}

func (p *XISOProcessor) ensureAbsent(path string) error {
	exists, err := afero.Exists(p.fs, path)
	if err != nil {
		return common.FormatError(path, err)
	}
	if exists {
		return common.FormatErrorString(common.ErrOutputExists, "%s", path)
	}
	return nil
}

// analyze parses the image, injects its default XBE certificate into the
// attach XBE at xbePath and plans the split
func (p *XISOProcessor) analyze(imagePath, outputDir, xbePath string) (*analysis, error) {
	file, err := p.fs.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToOpenImage, imagePath, err)
	}
	defer file.Close()

	reader, err := xbox.NewReader(file)
	if err != nil {
		return nil, common.FormatError(imagePath, err)
	}

	info := &analysis{}
	entry, err := reader.FindFile(p.options.TargetName)
	if err != nil {
		return nil, common.FormatError(imagePath, err)
	}
	if entry != nil {
		common.LogInfo(common.InfoDefaultXBEFound, entry.Path, entry.Sector, entry.Size)
		certificate, err := p.injectFrom(reader, entry, outputDir, xbePath)
		if err != nil {
			return nil, common.FormatError(imagePath, err)
		}
		info.xbeFound = true
		info.certificate = certificate
	} else {
		common.LogInfo(common.InfoDefaultXBEMissing, p.options.TargetName, imagePath)
	}

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToStatImage, imagePath, err)
	}
	plan, err := PlanSplit(stat.Size(), reader.Info().SectorSize)
	if err != nil {
		return nil, common.FormatError(imagePath, err)
	}
	info.plan = plan
	common.LogInfo(common.InfoImageSize, imagePath, common.FormatSize(plan.TotalSize), plan.TotalSectors)

	return info, nil
}

// injectFrom writes entry to a temporary file, hands it to the injector and
// removes it again whatever the outcome
func (p *XISOProcessor) injectFrom(reader *xbox.Reader, entry *xbox.DirectoryEntry, outputDir, xbePath string) (certificate *xbox.Certificate, err error) {
	data, err := reader.ReadFile(entry)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToExtractXBE, err)
	}

	tempPath := filepath.Join(outputDir, p.options.Names.OriginalXBE)
	if err := afero.WriteFile(p.fs, tempPath, data, 0o644); err != nil {
		_ = p.fs.Remove(tempPath)
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToExtractXBE, tempPath, err)
	}
	defer func() {
		if removeErr := p.fs.Remove(tempPath); removeErr != nil && err == nil {
			err = fmt.Errorf("%s %s: %w", common.ErrFailedToRemoveTempXBE, tempPath, removeErr)
		}
	}()

	if err := p.injector.Inject(tempPath, xbePath); err != nil {
		return nil, common.FormatError(common.ErrFailedToInjectXBE, err)
	}

	certificate, certErr := xbox.ReadCertificate(data)
	if certErr != nil {
		common.LogWarn(common.WarnCertificateTitle, certErr)
		return nil, nil
	}
	common.LogInfo(common.InfoTitleInjected, certificate.TitleName, certificate.TitleID)
	return certificate, nil
}

// split copies the two halves of the image and moves the original into the
// holding directory, which is only created once both fragments are written
func (p *XISOProcessor) split(imagePath, outputDir string, plan *SplitPlan) ([]string, error) {
	first := filepath.Join(outputDir, p.options.Names.FirstPart)
	second := filepath.Join(outputDir, p.options.Names.SecondPart)
	if err := p.copyFragments(imagePath, first, second, plan); err != nil {
		return nil, err
	}
	common.LogInfo(common.InfoImageSplit, imagePath, plan.SplitSector, first, second)

	holdingDir := filepath.Join(outputDir, p.options.Names.Holding)
	if err := p.fs.MkdirAll(holdingDir, 0o755); err != nil {
		p.removeFragments(first, second)
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToCreateOutputDir, holdingDir, err)
	}

	kept := filepath.Join(holdingDir, filepath.Base(imagePath))
	if err := p.ensureAbsent(kept); err != nil {
		p.removeFragments(first, second)
		return nil, err
	}
	if err := p.fs.Rename(imagePath, kept); err != nil {
		p.removeFragments(first, second)
		return nil, fmt.Errorf("%s %s -> %s: %w", common.ErrFailedToMoveImage, imagePath, kept, err)
	}
	common.LogInfo(common.InfoOriginalKept, kept)

	return []string{first, second}, nil
}

// copyFragments writes [0, split) and [split, end) of the image into first and second
func (p *XISOProcessor) copyFragments(imagePath, first, second string, plan *SplitPlan) error {
	source, err := p.fs.Open(imagePath)
	if err != nil {
		return fmt.Errorf("%s %s: %w", common.ErrFailedToOpenImage, imagePath, err)
	}
	defer source.Close()

	if err := p.writeFragment(source, first, 0, plan.FirstSize()); err != nil {
		return err
	}
	if err := p.writeFragment(source, second, plan.FirstSize(), plan.SecondSize()); err != nil {
		p.removeFragments(first)
		return err
	}
	return nil
}

func (p *XISOProcessor) removeFragments(paths ...string) {
	for _, path := range paths {
		_ = p.fs.Remove(path)
	}
}

// writeFragment copies [offset, offset+length) of source into a new file.
// A partially written fragment is removed.
func (p *XISOProcessor) writeFragment(source io.ReaderAt, path string, offset, length int64) error {
	out, err := p.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%s %s: %w", common.ErrFailedToCreateOutputFile, path, err)
	}

	written, err := common.CopyRange(out, source, offset, length)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = p.fs.Remove(path)
		return fmt.Errorf("%s %s: %w", common.ErrFailedToWriteFragment, path, err)
	}

	common.LogDebug(common.DebugFragmentCopied, written, offset, path)
	return nil
}

// List prints every entry of the image directory tree to w
func (p *XISOProcessor) List(imagePath string, w io.Writer) (int, error) {
	file, err := p.fs.Open(imagePath)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", common.ErrFailedToOpenImage, imagePath, err)
	}
	defer file.Close()

	reader, err := xbox.NewReader(file)
	if err != nil {
		return 0, common.FormatError(imagePath, err)
	}

	fmt.Fprintf(w, "Type | Sector     | Size       | Path\n")
	fmt.Fprintf(w, "-----|------------|------------|--------------------------------------------------\n")

	count := 0
	for entry, err := range reader.Walk().All() {
		if err != nil {
			return count, common.FormatError(imagePath, err)
		}
		kind := "FILE"
		if entry.Directory {
			kind = "DIR "
		}
		fmt.Fprintf(w, "%s | %-10d | %-10d | %s\n", kind, entry.Sector, entry.Size, entry.Path)
		count++
	}
	return count, nil
}

// Dump extracts every file of the image under outputDir, keeping the directory structure
func (p *XISOProcessor) Dump(imagePath, outputDir string) (int, error) {
	file, err := p.fs.Open(imagePath)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", common.ErrFailedToOpenImage, imagePath, err)
	}
	defer file.Close()

	reader, err := xbox.NewReader(file)
	if err != nil {
		return 0, common.FormatError(imagePath, err)
	}

	if err := p.fs.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("%s %s: %w", common.ErrFailedToCreateOutputDir, outputDir, err)
	}

	count := 0
	for entry, err := range reader.Walk().All() {
		if err != nil {
			return count, common.FormatError(imagePath, err)
		}
		target, err := dumpPath(outputDir, entry)
		if err != nil {
			return count, err
		}

		if entry.Directory {
			if err := p.fs.MkdirAll(target, 0o755); err != nil {
				return count, fmt.Errorf("%s %s: %w", common.ErrFailedToCreateOutputDir, target, err)
			}
			continue
		}

		if err := p.dumpFile(reader, entry, target); err != nil {
			return count, err
		}
		count++
	}

	common.LogInfo(common.InfoFilesDumped, count, outputDir)
	return count, nil
}

// dumpPath maps an entry path below outputDir, refusing names that could escape it
func dumpPath(outputDir string, entry *xbox.DirectoryEntry) (string, error) {
	if entry.Name == "" || entry.Name == "." || entry.Name == ".." || strings.ContainsAny(entry.Name, `/\`) {
		return "", fmt.Errorf("%s %q in %s", common.ErrUnsafeEntryName, entry.Name, entry.Path)
	}
	relative := strings.TrimPrefix(entry.Path, "./")
	return filepath.Join(outputDir, filepath.FromSlash(relative)), nil
}

func (p *XISOProcessor) dumpFile(reader *xbox.Reader, entry *xbox.DirectoryEntry, target string) error {
	if err := p.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%s %s: %w", common.ErrFailedToCreateOutputDir, filepath.Dir(target), err)
	}

	out, err := p.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%s %s: %w", common.ErrFailedToCreateOutputFile, target, err)
	}

	written, err := reader.ExtractTo(out, entry)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", common.ErrFailedToCreateOutputFile, target, err)
	}

	common.LogDebug(common.DebugFileDumped, entry.Path, written)
	return nil
}
