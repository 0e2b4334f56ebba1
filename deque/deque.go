/**
 *
 * 双端队列，元素为 fitting id
 * 用于从送风机出发的广度优先遍历（风机距离计算），数组实现以保证局部性
 *
 */

package deque

type Deque interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的 id
	Get(i int) int

	// 正向遍历
	Traverse(f func(i int, id int))

	// 在队列结尾增加一个元素
	AddLast(id int)

	// 在队列结尾删除一个元素
	RemoveLast() (int, bool)

	// 在队列头部增加一个元素
	AddFirst(id int)

	// 在队列头部删除一个元素
	RemoveFirst() (int, bool)

	IsFull() bool

	IsEmpty() bool
}
