package mdarena_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/hupe1980/mdarena"
)

// Example_float64Cube fills a 3x8x4 array of float64 and reads it back.
func Example_float64Cube() {
	arr, err := mdarena.NewArray[float64]([]int{3, 8, 4})
	if err != nil {
		log.Fatal(err)
	}
	defer arr.Free()

	for i := 0; i < 3; i++ {
		for j := 0; j < 8; j++ {
			for k := 0; k < 4; k++ {
				*arr.At(i, j, k) = float64(i*j)*0.5 - float64(j*k)*7.75 + float64(k*i)*3.25
			}
		}
	}

	fmt.Printf("arr[2][7][3] = %.2f\n", *arr.At(2, 7, 3))
	fmt.Println(arr.Row(1, 1))
	// Output:
	// arr[2][7][3] = -136.25
	// [0.5 -4 -8.5 -13]
}

// ExampleAlloc walks the pointer levels of an untyped block.
func ExampleAlloc() {
	b, err := mdarena.Alloc([]int{3, 8, 4}, 8, 8)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Free()

	elem := b.Root().Index(2).Index(7).Elem(3)
	binary.LittleEndian.PutUint64(elem, math.Float64bits(1.5))

	off, _ := b.Offset(2, 7, 3)
	l := b.Layout()
	fmt.Println(l.PointerBytes, l.PaddingBytes, l.ElementBytes, off)
	// Output: 216 0 768 976
}

// ExampleAlloc_invalid shows that a zero extent is rejected.
func ExampleAlloc_invalid() {
	_, err := mdarena.Alloc([]int{3, 0}, 8, 8)
	fmt.Println(errors.Is(err, mdarena.ErrInvalidArgument))
	// Output: true
}
