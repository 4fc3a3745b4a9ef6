// Package media reads just enough of an uploaded clip to describe it on a
// video link.
package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrNoMovieHeader = errors.New("movie header not found")

type box struct {
	body int64
	end  int64
}

// VideoDuration reads the mvhd atom of an ISO base media stream (mp4, m4v,
// mov) of the given size. Other containers return ErrNoMovieHeader.
func VideoDuration(r io.ReaderAt, size int64) (time.Duration, error) {
	moov, err := findBox(r, 0, size, "moov")
	if err != nil {
		return 0, err
	}
	mvhd, err := findBox(r, moov.body, moov.end, "mvhd")
	if err != nil {
		return 0, err
	}
	return movieDuration(r, mvhd)
}

func findBox(r io.ReaderAt, off, end int64, want string) (box, error) {
	var hdr [16]byte
	for off+8 <= end {
		if _, err := r.ReadAt(hdr[:8], off); err != nil {
			return box{}, err
		}
		size := int64(binary.BigEndian.Uint32(hdr[:4]))
		kind := string(hdr[4:8])
		headerLen := int64(8)

		switch size {
		case 0:
			size = end - off
		case 1:
			if _, err := r.ReadAt(hdr[8:16], off+8); err != nil {
				return box{}, err
			}
			size = int64(binary.BigEndian.Uint64(hdr[8:16]))
			headerLen = 16
		}
		if size < headerLen || off+size > end {
			return box{}, fmt.Errorf("malformed %s box at offset %d", kind, off)
		}

		if kind == want {
			return box{body: off + headerLen, end: off + size}, nil
		}
		off += size
	}
	return box{}, fmt.Errorf("%w: no %s box", ErrNoMovieHeader, want)
}

func movieDuration(r io.ReaderAt, b box) (time.Duration, error) {
	var buf [32]byte
	n := b.end - b.body
	if n > int64(len(buf)) {
		n = int64(len(buf))
	}
	if n < 4 {
		return 0, fmt.Errorf("mvhd box too small")
	}
	if _, err := r.ReadAt(buf[:n], b.body); err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}

	var (
		timescale uint32
		units     float64
	)
	switch version := buf[0]; version {
	case 0:
		if n < 20 {
			return 0, fmt.Errorf("mvhd payload too small for version 0")
		}
		timescale = binary.BigEndian.Uint32(buf[12:16])
		units = float64(binary.BigEndian.Uint32(buf[16:20]))
	case 1:
		if n < 32 {
			return 0, fmt.Errorf("mvhd payload too small for version 1")
		}
		timescale = binary.BigEndian.Uint32(buf[20:24])
		units = float64(binary.BigEndian.Uint64(buf[24:32]))
	default:
		return 0, fmt.Errorf("unsupported mvhd version %d", version)
	}

	if timescale == 0 {
		return 0, fmt.Errorf("mvhd timescale is zero")
	}
	return time.Duration(units / float64(timescale) * float64(time.Second)), nil
}

// FormatDuration prints m:ss, or h:mm:ss for clips of an hour or more.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
