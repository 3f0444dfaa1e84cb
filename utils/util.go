package utils

import "sort"

// Identified 具有int32 ID的实体
type Identified interface {
	ID() int32
}

// 找出ID(int32)对应的数据。
// 如果ids为空则返回所有数据，
// 如果不存在则将失败ID记录到失败列表中。
func Find[T any](dataMap map[int32]T, data []T, ids []int32) (okData []T, failedIDs []int32) {
	if len(ids) == 0 {
		return data, nil
	}
	okData = make([]T, 0, len(ids))
	failedIDs = make([]int32, 0, len(ids))
	for _, id := range ids {
		if d, ok := dataMap[id]; ok {
			okData = append(okData, d)
		} else {
			failedIDs = append(failedIDs, id)
		}
	}
	return
}

// InsertSorted 将v插入按ID升序排列的data中并返回新切片
func InsertSorted[T Identified](data []T, v T) []T {
	i := sort.Search(len(data), func(i int) bool { return data[i].ID() >= v.ID() })
	data = append(data, v)
	copy(data[i+1:], data[i:])
	data[i] = v
	return data
}

// NextID 返回比按ID升序排列的data中最大ID大1的ID，空时为1
func NextID[T Identified](data []T) int32 {
	if len(data) == 0 {
		return 1
	}
	return data[len(data)-1].ID() + 1
}
