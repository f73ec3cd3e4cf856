package escrow

import "math/bits"

// 所有涉及金额和计数器的运算必须检测溢出并拒绝，绝不回绕。

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrMathOverflow
	}
	return diff, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrMathOverflow
	}
	return lo, nil
}

func checkedAdd32(a, b uint32) (uint32, error) {
	sum := a + b
	if sum < a {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

// platformFee 计算平台手续费：raised * feeBps / 10000，向下取整
func platformFee(raised uint64, feeBps uint16) (uint64, error) {
	product, err := checkedMul(raised, uint64(feeBps))
	if err != nil {
		return 0, err
	}
	return product / 10000, nil
}
