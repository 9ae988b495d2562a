package vorbis

// FloorClass describes one entry of a floor 1 config's class table: how
// many x_list values (Dimensions) it contributes per partition, how many
// subclass selector bits (Subclasses) it uses, and which codebooks back
// its master/subclass selection.
type FloorClass struct {
	Dimensions    int
	Subclasses    int
	Masterbook    OptionalIndex
	SubclassBooks []OptionalIndex // length 1<<Subclasses
}

// Floor1Config is a decoded floor type 1 configuration (§4.3.3.c). Floor
// type 0 is never represented by this type: it is reported as NotSupported.
type Floor1Config struct {
	Partitions         int
	PartitionClassList []int
	Classes            []FloorClass
	Multiplier         int
	Rangebits          int
	XList              []int
	// Values is len(XList), the count used to size floor curve output.
	Values int
}

// decodeFloors reads the setup header's floor list (§4.3.3.c).
func decodeFloors(br *BitReader, numCodebooks int) ([]FloorEntry, error) {
	countVal, err := br.ReadUint(6)
	if err != nil {
		return nil, toCorrupted(err)
	}
	count := int(countVal) + 1
	floors := make([]FloorEntry, count)
	for i := 0; i < count; i++ {
		entry, err := decodeFloor(br, numCodebooks)
		if err != nil {
			return nil, err
		}
		floors[i] = entry
	}
	return floors, nil
}

func decodeFloor(br *BitReader, numCodebooks int) (FloorEntry, error) {
	typeVal, err := br.ReadUint(16)
	if err != nil {
		return FloorEntry{}, toCorrupted(err)
	}
	floorType := int(typeVal)

	switch floorType {
	case 0:
		return FloorEntry{}, notSupported(br.Offset(), "floor type 0 is not supported")
	case 1:
		f, err := decodeFloor1(br, numCodebooks)
		if err != nil {
			return FloorEntry{}, err
		}
		return FloorEntry{FloorType: 1, Floor1: f}, nil
	default:
		return FloorEntry{}, corrupted(br.Offset(), "unknown floor type %d", floorType)
	}
}

func decodeFloor1(br *BitReader, numCodebooks int) (*Floor1Config, error) {
	partitionsVal, err := br.ReadUint(5)
	if err != nil {
		return nil, toCorrupted(err)
	}
	partitions := int(partitionsVal)

	partitionClassList := make([]int, partitions)
	maxClass := -1
	for i := 0; i < partitions; i++ {
		c, err := br.ReadUint(4)
		if err != nil {
			return nil, toCorrupted(err)
		}
		partitionClassList[i] = int(c)
		if int(c) > maxClass {
			maxClass = int(c)
		}
	}

	classes := make([]FloorClass, maxClass+1)
	for c := 0; c <= maxClass; c++ {
		dimVal, err := br.ReadUint(3)
		if err != nil {
			return nil, toCorrupted(err)
		}
		subVal, err := br.ReadUint(2)
		if err != nil {
			return nil, toCorrupted(err)
		}
		dimensions := int(dimVal) + 1
		subclasses := int(subVal)

		var masterbook OptionalIndex
		if subclasses != 0 {
			mb, err := br.ReadUint(8)
			if err != nil {
				return nil, toCorrupted(err)
			}
			masterbook = OptionalIndex{Valid: true, Index: int(mb)}
		}

		subBooks := make([]OptionalIndex, 1<<uint(subclasses))
		for j := range subBooks {
			sb, err := br.ReadUint(8)
			if err != nil {
				return nil, toCorrupted(err)
			}
			idx := int(sb) - 1
			if idx >= 0 {
				subBooks[j] = OptionalIndex{Valid: true, Index: idx}
			}
		}

		classes[c] = FloorClass{
			Dimensions:    dimensions,
			Subclasses:    subclasses,
			Masterbook:    masterbook,
			SubclassBooks: subBooks,
		}
	}

	multVal, err := br.ReadUint(2)
	if err != nil {
		return nil, toCorrupted(err)
	}
	rangebitsVal, err := br.ReadUint(4)
	if err != nil {
		return nil, toCorrupted(err)
	}
	multiplier := int(multVal) + 1
	rangebits := int(rangebitsVal)

	xList := []int{0, 1 << uint(rangebits)}
	for i := 0; i < partitions; i++ {
		class := partitionClassList[i]
		for j := 0; j < classes[class].Dimensions; j++ {
			v, err := br.ReadUint(uint(rangebits))
			if err != nil {
				return nil, toCorrupted(err)
			}
			xList = append(xList, int(v))
		}
	}

	if len(xList) > 65 {
		return nil, corrupted(br.Offset(), "floor1 x_list has %d entries, exceeds 65", len(xList))
	}
	seen := make(map[int]bool, len(xList))
	for _, v := range xList {
		if seen[v] {
			return nil, corrupted(br.Offset(), "floor1 x_list contains duplicate value %d", v)
		}
		seen[v] = true
	}

	for _, cls := range classes {
		if cls.Masterbook.Valid && cls.Masterbook.Index >= numCodebooks {
			return nil, corrupted(br.Offset(), "floor1 class masterbook index %d out of range", cls.Masterbook.Index)
		}
		for _, sb := range cls.SubclassBooks {
			if sb.Valid && sb.Index >= numCodebooks {
				return nil, corrupted(br.Offset(), "floor1 subclass book index %d out of range", sb.Index)
			}
		}
	}

	return &Floor1Config{
		Partitions:         partitions,
		PartitionClassList: partitionClassList,
		Classes:            classes,
		Multiplier:         multiplier,
		Rangebits:          rangebits,
		XList:              xList,
		Values:             len(xList),
	}, nil
}
