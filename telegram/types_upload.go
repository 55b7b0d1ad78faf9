// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

type InputFile interface {
	tl.Object
	ImplementsInputFile()
}

type InputFileObj struct {
	ID          int64
	Parts       int32
	Name        string
	Md5Checksum string
}

func (*InputFileObj) CRC() uint32 { return 0xf52ff27f }

func (*InputFileObj) ImplementsInputFile() {}

type InputFileBig struct {
	ID    int64
	Parts int32
	Name  string
}

func (*InputFileBig) CRC() uint32 { return 0xfa4f0bb5 }

func (*InputFileBig) ImplementsInputFile() {}

type InputFileLocation interface {
	tl.Object
	ImplementsInputFileLocation()
}

// InputFileLocationObj addresses a file by volume, as photos did before
// they got ids.
type InputFileLocationObj struct {
	VolumeID      int64
	LocalID       int32
	Secret        int64
	FileReference []byte
}

func (*InputFileLocationObj) CRC() uint32 { return 0xdfdaabe1 }

func (*InputFileLocationObj) ImplementsInputFileLocation() {}

type InputDocumentFileLocation struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	ThumbSize     string
}

func (*InputDocumentFileLocation) CRC() uint32 { return 0xbad07584 }

func (*InputDocumentFileLocation) ImplementsInputFileLocation() {}

type InputPhotoFileLocation struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	ThumbSize     string
}

func (*InputPhotoFileLocation) CRC() uint32 { return 0x40181ffe }

func (*InputPhotoFileLocation) ImplementsInputFileLocation() {}

type UploadFile interface {
	tl.Object
	ImplementsUploadFile()
}

type UploadFileObj struct {
	Type  tl.Object
	Mtime int32
	Bytes []byte
}

func (*UploadFileObj) CRC() uint32 { return 0x096a18d5 }

func (*UploadFileObj) ImplementsUploadFile() {}

type UploadFileCdnRedirect struct {
	DcID          int32
	FileToken     []byte
	EncryptionKey []byte
	EncryptionIv  []byte
	FileHashes    []*FileHash
}

func (*UploadFileCdnRedirect) CRC() uint32 { return 0xf18cda44 }

func (*UploadFileCdnRedirect) ImplementsUploadFile() {}

type UploadCdnFile interface {
	tl.Object
	ImplementsUploadCdnFile()
}

type UploadCdnFileReuploadNeeded struct {
	RequestToken []byte
}

func (*UploadCdnFileReuploadNeeded) CRC() uint32 { return 0xeea8e46e }

func (*UploadCdnFileReuploadNeeded) ImplementsUploadCdnFile() {}

type UploadCdnFileObj struct {
	Bytes []byte
}

func (*UploadCdnFileObj) CRC() uint32 { return 0xa99fca4f }

func (*UploadCdnFileObj) ImplementsUploadCdnFile() {}

// FileHash is the sha256 of Limit bytes of a CDN file starting at Offset.
type FileHash struct {
	Offset int64
	Limit  int32
	Hash   []byte
}

func (*FileHash) CRC() uint32 { return 0xf39b035c }

type StorageFileUnknown struct{}

func (*StorageFileUnknown) CRC() uint32 { return 0xaa963b05 }

type StorageFilePartial struct{}

func (*StorageFilePartial) CRC() uint32 { return 0x40bc6f52 }

type StorageFileJpeg struct{}

func (*StorageFileJpeg) CRC() uint32 { return 0x007efe0e }

type StorageFileGif struct{}

func (*StorageFileGif) CRC() uint32 { return 0xcae1aadf }

type StorageFilePng struct{}

func (*StorageFilePng) CRC() uint32 { return 0x0a4f63c0 }

type StorageFilePdf struct{}

func (*StorageFilePdf) CRC() uint32 { return 0xae1e508d }

type StorageFileMp3 struct{}

func (*StorageFileMp3) CRC() uint32 { return 0x528a0677 }

type StorageFileMov struct{}

func (*StorageFileMov) CRC() uint32 { return 0x4b09ebbc }

type StorageFileMp4 struct{}

func (*StorageFileMp4) CRC() uint32 { return 0xb3cea0e4 }

type StorageFileWebp struct{}

func (*StorageFileWebp) CRC() uint32 { return 0x1081464c }

// CdnConfig lists the RSA keys of the CDN data centers, which differ from
// the keys of the main ones.
type CdnConfig struct {
	PublicKeys []*CdnPublicKey
}

func (*CdnConfig) CRC() uint32 { return 0x5725e40a }

type CdnPublicKey struct {
	DcID      int32
	PublicKey string
}

func (*CdnPublicKey) CRC() uint32 { return 0xc982eaba }

func init() {
	tl.RegisterObjects(
		&CdnConfig{}, &CdnPublicKey{},
		&InputFileObj{}, &InputFileBig{},
		&InputFileLocationObj{}, &InputDocumentFileLocation{}, &InputPhotoFileLocation{},
		&UploadFileObj{}, &UploadFileCdnRedirect{},
		&UploadCdnFileReuploadNeeded{}, &UploadCdnFileObj{}, &FileHash{},
		&StorageFileUnknown{}, &StorageFilePartial{}, &StorageFileJpeg{}, &StorageFileGif{},
		&StorageFilePng{}, &StorageFilePdf{}, &StorageFileMp3{}, &StorageFileMov{},
		&StorageFileMp4{}, &StorageFileWebp{},
	)
}
