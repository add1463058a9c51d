package tagging

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/maxth/mediadl/internal/constants"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Tags is the canonical metadata written into a downloaded track.
type Tags struct {
	Artist string
	Title  string
	Album  string
}

// Tagger writes tags into an audio file in place.
type Tagger interface {
	TagFile(filePath string, tags Tags, coverData []byte) error
}

// FileTagger dispatches on the file extension.
type FileTagger struct{}

func (FileTagger) TagFile(filePath string, tags Tags, coverData []byte) error {
	return TagFile(filePath, tags, coverData)
}

// TagFile writes metadata tags to the audio file at filePath.
func TagFile(filePath string, tags Tags, coverData []byte) error {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case constants.ExtFLAC:
		return tagFLAC(filePath, tags, coverData)
	case constants.ExtMP3:
		return tagMP3(filePath, tags, coverData)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// tagFLAC replaces the title/artist/album comments and every picture block.
// Other comments and metadata blocks are kept as they were.
func tagFLAC(filePath string, tags Tags, coverData []byte) error {
	f, err := flac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to open FLAC file: %w", err)
	}

	var (
		blocks []*flac.MetaDataBlock
		vc     *flacvorbis.MetaDataBlockVorbisComment
	)
	for _, b := range f.Meta {
		switch b.Type {
		case flac.VorbisComment:
			if vc == nil {
				existing, err := flacvorbis.ParseFromMetaDataBlock(*b)
				if err != nil {
					return fmt.Errorf("failed to parse vorbis comment: %w", err)
				}
				vc = existing
			}
		case flac.Picture:
			if len(coverData) == 0 {
				blocks = append(blocks, b)
			}
		default:
			blocks = append(blocks, b)
		}
	}
	if vc == nil {
		vc = flacvorbis.New()
	}

	vc.Comments = dropComments(vc.Comments, flacvorbis.FIELD_TITLE, flacvorbis.FIELD_ARTIST, flacvorbis.FIELD_ALBUM)
	fields := []struct{ key, value string }{
		{flacvorbis.FIELD_TITLE, tags.Title},
		{flacvorbis.FIELD_ARTIST, tags.Artist},
		{flacvorbis.FIELD_ALBUM, tags.Album},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		if err := vc.Add(field.key, field.value); err != nil {
			return fmt.Errorf("failed to add %s: %w", field.key, err)
		}
	}
	vcBlock := vc.Marshal()
	blocks = append(blocks, &vcBlock)

	if len(coverData) > 0 {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", coverData, detectMIME(coverData))
		if err != nil {
			return fmt.Errorf("failed to build picture block: %w", err)
		}
		picBlock := pic.Marshal()
		blocks = append(blocks, &picBlock)
	}

	f.Meta = blocks
	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	return nil
}

// dropComments removes every KEY=value entry whose key matches one of keys.
func dropComments(comments []string, keys ...string) []string {
	kept := comments[:0]
	for _, c := range comments {
		name, _, _ := strings.Cut(c, "=")
		drop := false
		for _, k := range keys {
			if strings.EqualFold(name, k) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, c)
		}
	}
	return kept
}

// tagMP3 writes ID3v2.4 tags to an MP3 file.
func tagMP3(filePath string, tags Tags, coverData []byte) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}

	if len(coverData) > 0 {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    detectMIME(coverData),
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     coverData,
		})
	}

	return tag.Save()
}

// detectMIME sniffs the image type so PNG covers aren't labelled as JPEG.
func detectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if !strings.HasPrefix(mime, "image/") {
		return constants.MimeTypeJPEG
	}
	return mime
}
