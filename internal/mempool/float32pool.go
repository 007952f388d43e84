// Package mempool recycles float32 planes for the preprocessing
// variants. Every variant converts the full image to a float plane, so
// at typical plan resolutions these are multi-megabyte allocations made
// several times per request.
package mempool

import "sync"

// step is the bucket granularity. Planes are pooled by capacity rounded
// up to the next multiple, so slightly different image sizes share a
// bucket.
const step = 4096

var planePools sync.Map // bucket size -> *sync.Pool

func bucket(n int) int {
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

// GetFloat32 returns a plane with length n. Contents are undefined; the
// caller must overwrite every element it reads. Return the plane with
// PutFloat32 when done.
func GetFloat32(n int) []float32 {
	cls := bucket(n)
	pAny, _ := planePools.LoadOrStore(cls, &sync.Pool{
		New: func() any { return make([]float32, cls) },
	})
	pool := pAny.(*sync.Pool)
	buf := pool.Get().([]float32)
	return buf[:n]
}

// PutFloat32 returns a plane obtained from GetFloat32 to its bucket.
// Planes whose capacity does not match a bucket are dropped.
func PutFloat32(buf []float32) {
	if cap(buf) == 0 || cap(buf)%step != 0 {
		return
	}
	if pAny, ok := planePools.Load(cap(buf)); ok {
		pAny.(*sync.Pool).Put(buf[:cap(buf)])
	}
}
