package processor

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var (
	pngSignature  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegICCHeader = []byte("ICC_PROFILE\x00")
)

// pngHasICC walks the chunk list up to the first IDAT; iCCP must precede it.
func pngHasICC(r io.Reader) (bool, error) {
	br := bufio.NewReader(r)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return false, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return false, errors.New("invalid PNG signature")
	}

	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
		length := binary.BigEndian.Uint32(lenBuf)

		typeBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, typeBuf); err != nil {
			return false, err
		}

		switch string(typeBuf) {
		case "iCCP":
			return true, nil
		case "IDAT", "IEND":
			return false, nil
		}

		if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
			return false, err
		}
	}
}

// jpegHasICC scans marker segments up to the start of scan for an APP2
// ICC_PROFILE segment.
func jpegHasICC(r io.Reader) (bool, error) {
	br := bufio.NewReader(r)

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return false, err
	}
	if soi[0] != 0xff || soi[1] != 0xd8 {
		return false, errors.New("invalid JPEG SOI")
	}

	for {
		markerPrefix, err := br.ReadByte()
		if err != nil {
			return false, err
		}
		for markerPrefix != 0xff {
			markerPrefix, err = br.ReadByte()
			if err != nil {
				return false, err
			}
		}

		marker, err := br.ReadByte()
		if err != nil {
			return false, err
		}
		for marker == 0xff {
			marker, err = br.ReadByte()
			if err != nil {
				return false, err
			}
		}

		if marker == 0xd9 || marker == 0xda { // EOI, SOS
			return false, nil
		}
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return false, err
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return false, errors.New("invalid JPEG segment length")
		}
		payloadLen := segLen - 2

		if marker == 0xe2 && payloadLen >= len(jpegICCHeader) {
			head := make([]byte, len(jpegICCHeader))
			if _, err := io.ReadFull(br, head); err != nil {
				return false, err
			}
			if bytes.Equal(head, jpegICCHeader) {
				return true, nil
			}
			payloadLen -= len(head)
		}

		if _, err := io.CopyN(io.Discard, br, int64(payloadLen)); err != nil {
			return false, err
		}
	}
}
