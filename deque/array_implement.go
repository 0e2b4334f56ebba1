package deque

const (
	// 数组大小基数
	base = 8
)

// ArrDeque is a ring buffer. It grows by doubling when an add finds it full.
type ArrDeque struct {
	arr []int

	// 头部元素下标
	start int

	// 元素个数
	size int
}

// 工厂方法
func NewArrDeque(capacity int) *ArrDeque {
	return &ArrDeque{
		arr: make([]int, roundCapacity(capacity)),
	}
}

func roundCapacity(capacity int) int {
	if capacity < base {
		return base
	}
	if remainder := capacity % base; remainder != 0 {
		capacity = capacity - remainder + base
	}
	return capacity
}

func (ad *ArrDeque) Size() int {
	return ad.size
}

func (ad *ArrDeque) Cap() int {
	return len(ad.arr)
}

func (ad *ArrDeque) index(i int) int {
	return (ad.start + i) % len(ad.arr)
}

func (ad *ArrDeque) Get(i int) int {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return ad.arr[ad.index(i)]
}

func (ad *ArrDeque) Traverse(f func(i int, id int)) {
	for i := 0; i < ad.size; i++ {
		f(i, ad.arr[ad.index(i)])
	}
}

func (ad *ArrDeque) AddLast(id int) {
	if ad.IsFull() {
		ad.grow()
	}
	ad.arr[ad.index(ad.size)] = id
	ad.size++
}

func (ad *ArrDeque) RemoveLast() (int, bool) {
	if ad.IsEmpty() {
		return 0, false
	}
	ad.size--
	return ad.arr[ad.index(ad.size)], true
}

func (ad *ArrDeque) AddFirst(id int) {
	if ad.IsFull() {
		ad.grow()
	}
	ad.start = (ad.start - 1 + len(ad.arr)) % len(ad.arr)
	ad.arr[ad.start] = id
	ad.size++
}

func (ad *ArrDeque) RemoveFirst() (int, bool) {
	if ad.IsEmpty() {
		return 0, false
	}
	id := ad.arr[ad.start]
	ad.start = ad.index(1)
	ad.size--
	if ad.size == 0 {
		ad.start = 0
	}
	return id, true
}

func (ad *ArrDeque) IsFull() bool {
	return ad.size == len(ad.arr)
}

func (ad *ArrDeque) IsEmpty() bool {
	return ad.size == 0
}

// 扩容：元素按顺序搬到新数组头部
func (ad *ArrDeque) grow() {
	arr := make([]int, len(ad.arr)*2)
	for i := 0; i < ad.size; i++ {
		arr[i] = ad.arr[ad.index(i)]
	}
	ad.arr = arr
	ad.start = 0
}
