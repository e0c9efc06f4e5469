package cartridge

import "testing"

func makeHeader(mbcType, ramSize byte) []byte {
	data := make([]byte, HeaderSize)
	copy(data[TitleStart:], "TESTGAME")
	data[MBCTypeOffset] = mbcType
	data[RAMSizeOffset] = ramSize
	return data
}

func TestLoad_MBC3_32KiB(t *testing.T) {
	data := makeHeader(0x13, 0x03)
	cart, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cart.Type != MBC3 {
		t.Errorf("Type = %v, want MBC3", cart.Type)
	}
	if cart.ERAMSize != 32*1024 {
		t.Errorf("ERAMSize = %d, want %d", cart.ERAMSize, 32*1024)
	}
	if cart.Title != "TESTGAME" {
		t.Errorf("Title = %q, want TESTGAME", cart.Title)
	}
}

func TestLoad_MBC2BuiltInRAM(t *testing.T) {
	data := makeHeader(0x05, 0x00)
	cart, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cart.ERAMSize != 512 {
		t.Errorf("ERAMSize = %d, want 512", cart.ERAMSize)
	}
}

func TestLoad_TooShort(t *testing.T) {
	_, err := Load(make([]byte, 0x10))
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestLoad_UnsupportedMBC(t *testing.T) {
	data := makeHeader(0x7F, 0x00)
	_, err := Load(data)
	if err == nil {
		t.Fatal("expected error for unsupported MBC tag")
	}
}

func TestLoad_NoneMBC(t *testing.T) {
	data := makeHeader(0x00, 0x02)
	cart, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cart.Type != MBCNone {
		t.Errorf("Type = %v, want MBCNone", cart.Type)
	}
	if cart.ERAMSize != 8*1024 {
		t.Errorf("ERAMSize = %d, want %d", cart.ERAMSize, 8*1024)
	}
}
