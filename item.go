package lxo

import "fmt"

// readItem decodes one ITEM chunk: the item header followed by a nested
// subchunk sequence with u16 sizes. Filter keys for subchunks are the
// enclosing tag joined with the subchunk tag ("ITEMPAKG").
func (d *decoder) readItem(snap int64, size uint32) error {
	typename, err := d.r.s0()
	if err != nil {
		return err
	}
	name, err := d.r.s0()
	if err != nil {
		return err
	}
	referenceID, err := d.r.u4()
	if err != nil {
		return err
	}
	item := d.file.AddItem(name, referenceID, typename)

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

		if !d.filter.allows("ITEM" + subTag) {
			if err := d.r.skip(int64(subSize)); err != nil {
				return err
			}
			continue
		}

		if err := d.readItemSubChunk(item, subTag, subSnap, subSize); err != nil {
			return fmt.Errorf("subchunk %s: %w", subTag, err)
		}
		if consumed := subSnap - d.r.remain; consumed != int64(subSize) {
			return fmt.Errorf("%w: subchunk %s declared %d, consumed %d", ErrSizeMismatch, subTag, subSize, consumed)
		}
	}
	return nil
}

func (d *decoder) readItemSubChunk(item *Item, tag string, snap int64, size uint16) error {
	switch tag {
	case "PAKG":
		name, err := d.r.s0()
		if err != nil {
			return err
		}
		if _, err := d.r.u4(); err != nil { // reserved
			return err
		}
		item.Packages = append(item.Packages, name)

	case "XREF":
		index, err := d.r.u4()
		if err != nil {
			return err
		}
		filename, err := d.r.s0()
		if err != nil {
			return err
		}
		itemID, err := d.r.s0()
		if err != nil {
			return err
		}
		item.XRefs = append(item.XRefs, XRef{Index: index, Filename: filename, ItemID: itemID})

	case "LAYR":
		index, err := d.r.u4()
		if err != nil {
			return err
		}
		flags, err := d.r.u4()
		if err != nil {
			return err
		}
		var color [4]uint8
		for i := range color {
			if color[i], err = d.r.u1(); err != nil {
				return err
			}
		}
		item.Layer = &ItemLayer{Index: index, Flags: flags, Color: color}

	case "LINK":
		graphName, err := d.r.s0()
		if err != nil {
			return err
		}
		itemIndex, err := d.r.i4()
		if err != nil {
			return err
		}
		linkIndex, err := d.r.i4()
		if err != nil {
			return err
		}
		item.GraphLinks[graphName] = GraphLink{ItemIndex: itemIndex, LinkIndex: linkIndex}

	case "CHNL":
		name, err := d.r.s0()
		if err != nil {
			return err
		}
		datatype, err := d.r.u2()
		if err != nil {
			return err
		}
		value, err := d.r.value(datatype)
		if err != nil {
			return err
		}
		if d.file.hasChannelName(name) {
			item.Channels[name] = value
		} else {
			item.Unresolved = append(item.Unresolved, Channel{Name: name, DataType: datatype, Value: value})
		}

	case "CHNS":
		name, err := d.r.s0()
		if err != nil {
			return err
		}
		value, err := d.r.s0()
		if err != nil {
			return err
		}
		item.Channels[name] = value

	case "CHAN":
		index, err := d.r.vx()
		if err != nil {
			return err
		}
		datatype, err := d.r.u2()
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
		item.Channels[name] = value

	case "CHNV":
		name, err := d.r.s0()
		if err != nil {
			return err
		}
		datatype, err := d.r.u2()
		if err != nil {
			return err
		}
		count, err := d.r.u2()
		if err != nil {
			return err
		}
		vec := make([]ChannelComponent, 0, count)
		for i := uint16(0); i < count; i++ {
			cname, err := d.r.s0()
			if err != nil {
				return err
			}
			value, err := d.r.value(datatype)
			if err != nil {
				return err
			}
			vec = append(vec, ChannelComponent{Name: cname, Value: value})
		}
		item.VectorChannels[name] = vec

	case "ITAG":
		typ, err := d.r.id4()
		if err != nil {
			return err
		}
		value, err := d.r.s0()
		if err != nil {
			return err
		}
		item.Tags = append(item.Tags, ItemTag{Type: typ, Value: value})

	case "VNAM":
		name, err := d.r.s0()
		if err != nil {
			return err
		}
		item.VName = name

	case "UNIQ":
		// identity string, consumed for alignment only
		if _, err := d.r.s0(); err != nil {
			return err
		}

	case "UIDX":
		if _, err := d.r.u4(); err != nil {
			return err
		}

	case "BCHN":
		// operation type + reserved word, not retained
		if _, err := d.r.s0(); err != nil {
			return err
		}
		if _, err := d.r.u4(); err != nil {
			return err
		}

	case "CHNC":
		length, err := d.r.u2()
		if err != nil {
			return err
		}
		data, err := d.r.blob(int(length))
		if err != nil {
			return err
		}
		if length%2 == 1 {
			if _, err := d.r.u1(); err != nil { // pad byte
				return err
			}
		}
		item.RawChannels = append(item.RawChannels, data)

	default:
		// Gradients, compiled links, micro channels and anything newer
		// are kept as raw bytes.
		data, err := d.r.blob(int(int64(size) - (snap - d.r.remain)))
		if err != nil {
			return err
		}
		item.Blobs = append(item.Blobs, SubBlob{Tag: tag, Data: data})
	}
	return nil
}
