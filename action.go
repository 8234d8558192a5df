package lxo

import "fmt"

// readAction decodes one ACTN chunk: an action layer header followed by a
// nested subchunk sequence. ITEM subchunks establish the current action
// item the channel records attach to.
func (d *decoder) readAction(snap int64, size uint32) error {
	name, err := d.r.s0()
	if err != nil {
		return err
	}
	typ, err := d.r.s0()
	if err != nil {
		return err
	}
	index, err := d.r.u4()
	if err != nil {
		return err
	}
	action := d.file.AddActionLayer(name, typ, index)

	var current *ActionItem
	for snap-d.r.remain < int64(size) {
		subTag, err := d.r.id4()
		if err != nil {
			return err
		}
		subSize, err := d.r.u2()
		if err != nil {
			return err
		}
		subSnap := d.r.remain

		if !d.filter.allows("ACTN" + subTag) {
			if err := d.r.skip(int64(subSize)); err != nil {
				return err
			}
			continue
		}

		if err := d.readActionSubChunk(action, &current, subTag, subSnap, subSize); err != nil {
			return fmt.Errorf("subchunk %s: %w", subTag, err)
		}
		if consumed := subSnap - d.r.remain; consumed != int64(subSize) {
			return fmt.Errorf("%w: subchunk %s declared %d, consumed %d", ErrSizeMismatch, subTag, subSize, consumed)
		}
	}
	return nil
}

func (d *decoder) readActionSubChunk(action *ActionLayer, current **ActionItem, tag string, snap int64, size uint16) error {
	switch tag {
	case "ITEM":
		referenceID, err := d.r.u4()
		if err != nil {
			return err
		}
		*current = action.AddItem(referenceID)

	case "CHAN":
		if *current == nil {
			return ErrMissingContext
		}
		index, err := d.r.vx()
		if err != nil {
			return err
		}
		datatype, err := d.r.u2()
		if err != nil {
			return err
		}
		envelope, err := d.r.vx()
		if err != nil {
			return err
		}
		value, err := d.r.value(datatype)
		if err != nil {
			return err
		}
		name, err := d.file.channelName(index)
		if err != nil {
			return err
		}
		(*current).Channels = append((*current).Channels, ActionChannel{
			Name:     name,
			DataType: datatype,
			Envelope: envelope,
			Value:    value,
		})

	case "GRAD":
		if *current == nil {
			return ErrMissingContext
		}
		data, err := d.r.blob(int(int64(size) - (snap - d.r.remain)))
		if err != nil {
			return err
		}
		(*current).Gradients = append((*current).Gradients, data)

	case "CHNS":
		if *current == nil {
			return ErrMissingContext
		}
		name, err := d.r.s0()
		if err != nil {
			return err
		}
		index, err := d.r.vx()
		if err != nil {
			return err
		}
		value, err := d.r.s0()
		if err != nil {
			return err
		}
		channel, err := d.file.channelName(index)
		if err != nil {
			return err
		}
		(*current).StringChannels = append((*current).StringChannels, StringChannel{
			Name:    name,
			Channel: channel,
			Value:   value,
		})

	default:
		// Parent-linkage records and anything newer are kept as raw
		// bytes on the current item, or dropped when none is active.
		data, err := d.r.blob(int(int64(size) - (snap - d.r.remain)))
		if err != nil {
			return err
		}
		if *current != nil {
			(*current).Blobs = append((*current).Blobs, SubBlob{Tag: tag, Data: data})
		}
	}
	return nil
}
