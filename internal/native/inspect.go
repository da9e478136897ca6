package native

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Format is an object file format.
type Format string

const (
	FormatELF     Format = "elf"
	FormatMachO   Format = "macho"
	FormatPE      Format = "pe"
	FormatUnknown Format = "unknown"
)

// FileInfo describes a shared library file without loading it.
type FileInfo struct {
	Path   string `json:"path"`
	Format Format `json:"format"`
	// Arch is the GOARCH the file was built for, or "" if unrecognized.
	Arch string `json:"arch"`
	// Exports lists exported function names when the format allows
	// reading them (ELF dynamic symbols, Mach-O symbol table).
	Exports []string `json:"-"`
}

// HasExport reports whether name is exported. It is false when exports
// could not be read.
func (fi FileInfo) HasExport(name string) bool {
	i := sort.SearchStrings(fi.Exports, name)
	return i < len(fi.Exports) && fi.Exports[i] == name
}

// ErrUnknownFormat is returned for files that are not ELF, Mach-O or PE.
var ErrUnknownFormat = errors.New("not a recognized shared library format")

// Inspect reads the header of the library at path.
func Inspect(path string) (FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, err
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return FileInfo{Path: path, Format: FormatUnknown}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	info := FileInfo{Path: path}
	switch {
	case string(magic[:]) == elf.ELFMAG:
		err = inspectELF(f, &info)
	case magic[0] == 'M' && magic[1] == 'Z':
		err = inspectPE(f, &info)
	case isMachO(magic):
		err = inspectMachO(f, &info)
	default:
		info.Format = FormatUnknown
		return info, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return info, err
	}
	sort.Strings(info.Exports)
	return info, nil
}

func isMachO(magic [4]byte) bool {
	le := uint32(magic[0]) | uint32(magic[1])<<8 | uint32(magic[2])<<16 | uint32(magic[3])<<24
	be := uint32(magic[3]) | uint32(magic[2])<<8 | uint32(magic[1])<<16 | uint32(magic[0])<<24
	for _, m := range []uint32{macho.Magic32, macho.Magic64, macho.MagicFat} {
		if le == m || be == m {
			return true
		}
	}
	return false
}

func inspectELF(r io.ReaderAt, info *FileInfo) error {
	f, err := elf.NewFile(r)
	if err != nil {
		return err
	}
	defer f.Close()

	info.Format = FormatELF
	switch f.Machine {
	case elf.EM_X86_64:
		info.Arch = "amd64"
	case elf.EM_AARCH64:
		info.Arch = "arm64"
	case elf.EM_386:
		info.Arch = "386"
	case elf.EM_ARM:
		info.Arch = "arm"
	case elf.EM_RISCV:
		info.Arch = "riscv64"
	}

	syms, err := f.DynamicSymbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return err
	}
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) == elf.STT_FUNC && s.Section != elf.SHN_UNDEF {
			info.Exports = append(info.Exports, s.Name)
		}
	}
	return nil
}

func inspectMachO(r io.ReaderAt, info *FileInfo) error {
	info.Format = FormatMachO

	f, err := macho.NewFile(r)
	if err != nil {
		// Universal binaries list one image per architecture; report the
		// first and read its symbols.
		fat, ferr := macho.NewFatFile(r)
		if ferr != nil {
			return err
		}
		defer fat.Close()
		if len(fat.Arches) == 0 {
			return fmt.Errorf("empty universal binary")
		}
		f = fat.Arches[0].File
	} else {
		defer f.Close()
	}

	switch f.Cpu {
	case macho.CpuAmd64:
		info.Arch = "amd64"
	case macho.CpuArm64:
		info.Arch = "arm64"
	case macho.Cpu386:
		info.Arch = "386"
	case macho.CpuArm:
		info.Arch = "arm"
	}
	if f.Symtab != nil {
		for _, s := range f.Symtab.Syms {
			// N_EXT with a section: an exported definition.
			if s.Type&0x01 != 0 && s.Sect != 0 {
				info.Exports = append(info.Exports, strings.TrimPrefix(s.Name, "_"))
			}
		}
	}
	return nil
}

func inspectPE(r io.ReaderAt, info *FileInfo) error {
	f, err := pe.NewFile(r)
	if err != nil {
		return err
	}
	defer f.Close()

	info.Format = FormatPE
	switch f.Machine {
	case pe.IMAGE_FILE_MACHINE_AMD64:
		info.Arch = "amd64"
	case pe.IMAGE_FILE_MACHINE_ARM64:
		info.Arch = "arm64"
	case pe.IMAGE_FILE_MACHINE_I386:
		info.Arch = "386"
	}
	return nil
}

// ExpectedFormat returns the object format a GOOS loads.
func ExpectedFormat(goos string) Format {
	switch goos {
	case "darwin", "ios":
		return FormatMachO
	case "windows":
		return FormatPE
	default:
		return FormatELF
	}
}
