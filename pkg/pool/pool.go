// Package pool предоставляет обобщённый пул объектов поверх sync.Pool.
//
// Объект обязан реализовывать метод Reset(), который вызывается при
// возврате объекта в пул, чтобы переиспользуемый объект всегда был чистым.
package pool

import "sync"

// Resettable — объект, умеющий сбрасывать своё состояние к начальному.
type Resettable interface {
	Reset()
}

// Pool — типизированный пул объектов с автоматическим сбросом при Put.
type Pool[T Resettable] struct {
	p sync.Pool
}

// New создаёт пул с фабрикой newFn для создания новых объектов.
func New[T Resettable](newFn func() T) *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{
			New: func() any { return newFn() },
		},
	}
}

// Get возвращает объект из пула, создавая новый при необходимости.
func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put сбрасывает объект через Reset() и возвращает его в пул.
func (p *Pool[T]) Put(v T) {
	v.Reset()
	p.p.Put(v)
}
