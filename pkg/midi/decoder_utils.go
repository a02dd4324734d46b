package midi

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}

// read decodes a fixed size big-endian value and advances the offset.
func (d *Decoder) read(v interface{}) error {
	if err := binary.Read(d.r, binary.BigEndian, v); err != nil {
		return truncated(err)
	}
	d.offset += int64(binary.Size(v))
	return nil
}

// add offset
func (d *Decoder) readByte() (byte, error) {
	var b byte
	if err := d.read(&b); err != nil {
		return 0, err
	}
	return b, nil
}

func (d *Decoder) unreadByte() error {
	if _, err := d.r.Seek(-1, io.SeekCurrent); err != nil {
		return err
	}
	d.offset--
	return nil
}

func (d *Decoder) uint7() (uint8, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	if b&0x80 != 0 {
		return 0, errors.Wrapf(ErrUnexpectedData, "data byte %#x at offset %d", b, d.offset-1)
	}
	return b, nil
}

// varLen returns the variable length value at the exact parser location.
func (d *Decoder) varLen() (uint32, error) {
	buf := make([]byte, 0, 4)

	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		buf = append(buf, b)
		if b>>7 == 0x0 {
			break
		}
		if len(buf) == 4 {
			return 0, errors.Wrapf(ErrUnexpectedData, "variable length quantity longer than 4 bytes at offset %d", d.offset)
		}
	}

	val, _ := decodeVarint(buf)
	return val, nil
}

// varLenData reads a variable length prefixed payload that must fit in the current track.
func (d *Decoder) varLenData() ([]byte, error) {
	l, err := d.varLen()
	if err != nil {
		return nil, err
	}

	if d.offset+int64(l) > d.trackEnd {
		return nil, errors.Wrapf(ErrTruncated, "%d byte payload at offset %d", l, d.offset)
	}

	data := make([]byte, l)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return nil, truncated(err)
	}
	d.offset += int64(l)

	return data, nil
}

func (d *Decoder) IDnSize() ([4]byte, uint32, error) {
	var ID [4]byte
	if err := d.read(&ID); err != nil {
		return ID, 0, err
	}

	var size uint32
	if err := d.read(&size); err != nil {
		return ID, 0, err
	}

	return ID, size, nil
}
