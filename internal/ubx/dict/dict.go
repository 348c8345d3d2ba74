// Package dict is the compiled-in UBX data dictionary: one statically
// declared table per message class, assembled into the shared read-only
// registry handed to frame readers at startup.
//
// Field names and layouts follow the u-blox M8/F9 interface descriptions.
// The tables are literal declarations; a malformed entry panics when the
// registry is first built, before any traffic is decoded.
package dict

import (
	"github.com/danmuck/ubxctl/internal/ubx/schema"
)

// UBX class ids.
const (
	ClassNAV = 0x01
	ClassACK = 0x05
	ClassCFG = 0x06
	ClassMON = 0x0A
	ClassESF = 0x10
)

// NewRegistry builds a fresh registry containing every message class below.
// Callers build one at startup and share it read-only.
func NewRegistry() *schema.Registry {
	return schema.NewRegistry(
		navClass(),
		ackClass(),
		cfgClass(),
		monClass(),
		esfClass(),
	)
}

func u1(name string) schema.Scalar { return schema.Scalar{Name: name, Kind: schema.KindU1, Count: 1} }
func i1(name string) schema.Scalar { return schema.Scalar{Name: name, Kind: schema.KindI1, Count: 1} }
func u2(name string) schema.Scalar { return schema.Scalar{Name: name, Kind: schema.KindU2, Count: 1} }
func i2(name string) schema.Scalar { return schema.Scalar{Name: name, Kind: schema.KindI2, Count: 1} }
func u4(name string) schema.Scalar { return schema.Scalar{Name: name, Kind: schema.KindU4, Count: 1} }
func i4(name string) schema.Scalar { return schema.Scalar{Name: name, Kind: schema.KindI4, Count: 1} }
func r4(name string) schema.Scalar { return schema.Scalar{Name: name, Kind: schema.KindR4, Count: 1} }

func str(name string, n int) schema.Scalar {
	return schema.Scalar{Name: name, Kind: schema.KindStr, Count: n}
}

func arr(name string, kind schema.Kind, n int) schema.Scalar {
	return schema.Scalar{Name: name, Kind: kind, Count: n}
}

func pad(n int) schema.Pad { return schema.Pad{Count: n} }

func bits(name string, width int, flags ...schema.Flag) schema.BitField {
	return schema.BitField{Name: name, Width: width, Flags: flags}
}

func flag(name string, start, stop uint) schema.Flag {
	return schema.MustFlag(name, start, stop)
}

func ackClass() *schema.Class {
	return schema.MustClass(ClassACK, "ACK",
		schema.MustMessage(0x01, "ACK", u1("clsID"), u1("msgID")),
		schema.MustMessage(0x00, "NAK", u1("clsID"), u1("msgID")),
	)
}

func navClass() *schema.Class {
	return schema.MustClass(ClassNAV, "NAV",
		schema.MustMessage(0x07, "PVT",
			u4("iTOW"), u2("year"), u1("month"), u1("day"),
			u1("hour"), u1("min"), u1("sec"),
			bits("valid", 1,
				flag("validDate", 0, 1), flag("validTime", 1, 2),
				flag("fullyResolved", 2, 3), flag("validMag", 3, 4)),
			u4("tAcc"), i4("nano"), u1("fixType"),
			bits("flags", 1,
				flag("gnssFixOK", 0, 1), flag("diffSoln", 1, 2),
				flag("psmState", 2, 5), flag("headVehValid", 5, 6),
				flag("carrSoln", 6, 8)),
			bits("flags2", 1,
				flag("confirmedAvai", 5, 6), flag("confirmedDate", 6, 7),
				flag("confirmedTime", 7, 8)),
			u1("numSV"),
			i4("lon"), i4("lat"), i4("height"), i4("hMSL"),
			u4("hAcc"), u4("vAcc"),
			i4("velN"), i4("velE"), i4("velD"), i4("gSpeed"), i4("headMot"),
			u4("sAcc"), u4("headAcc"), u2("pDOP"),
			bits("flags3", 2,
				flag("invalidLlh", 0, 1), flag("lastCorrectionAge", 1, 5)),
			pad(4),
			i4("headVeh"), i2("magDec"), u2("magAcc"),
		),
		schema.MustMessage(0x04, "DOP",
			u4("iTOW"), u2("gDOP"), u2("pDOP"), u2("tDOP"), u2("vDOP"),
			u2("hDOP"), u2("nDOP"), u2("eDOP"),
		),
		schema.MustMessage(0x03, "STATUS",
			u4("iTOW"), u1("gpsFix"),
			bits("flags", 1,
				flag("gpsFixOk", 0, 1), flag("diffSoln", 1, 2),
				flag("wknSet", 2, 3), flag("towSet", 3, 4)),
			bits("fixStat", 1,
				flag("diffCorr", 0, 1), flag("carrSolnValid", 1, 2),
				flag("mapMatching", 6, 8)),
			bits("flags2", 1,
				flag("psmState", 0, 2), flag("spoofDetState", 3, 5),
				flag("carrSoln", 6, 8)),
			u4("ttff"), u4("msss"),
		),
		schema.MustMessage(0x01, "POSECEF",
			u4("iTOW"), i4("ecefX"), i4("ecefY"), i4("ecefZ"), u4("pAcc"),
		),
		schema.MustMessage(0x11, "VELECEF",
			u4("iTOW"), i4("ecefVX"), i4("ecefVY"), i4("ecefVZ"), u4("sAcc"),
		),
		schema.MustMessage(0x14, "HPPOSLLH",
			u1("version"), pad(2),
			bits("flags", 1, flag("invalidLlh", 0, 1)),
			u4("iTOW"), i4("lon"), i4("lat"), i4("height"), i4("hMSL"),
			i1("lonHp"), i1("latHp"), i1("heightHp"), i1("hMSLHp"),
			u4("hAcc"), u4("vAcc"),
		),
		schema.MustMessage(0x21, "TIMEUTC",
			u4("iTOW"), u4("tAcc"), i4("nano"),
			u2("year"), u1("month"), u1("day"), u1("hour"), u1("min"), u1("sec"),
			bits("valid", 1,
				flag("validTOW", 0, 1), flag("validWKN", 1, 2),
				flag("validUTC", 2, 3), flag("utcStandard", 4, 8)),
		),
		schema.MustMessage(0x36, "COV",
			u4("iTOW"), u1("version"), u1("posCovValid"), u1("velCovValid"),
			pad(9),
			r4("posCovNN"), r4("posCovNE"), r4("posCovND"),
			r4("posCovEE"), r4("posCovED"), r4("posCovDD"),
			r4("velCovNN"), r4("velCovNE"), r4("velCovND"),
			r4("velCovEE"), r4("velCovED"), r4("velCovDD"),
		),
		schema.MustMessage(0x35, "SAT",
			u4("iTOW"), u1("version"), u1("numSvs"), pad(2),
			schema.RepeatedBlock{Name: "svs", Inner: []schema.Descriptor{
				u1("gnssId"), u1("svId"), u1("cno"), i1("elev"),
				i2("azim"), i2("prRes"),
				bits("flags", 4,
					flag("qualityInd", 0, 3), flag("svUsed", 3, 4),
					flag("health", 4, 6), flag("diffCorr", 6, 7),
					flag("smoothed", 7, 8), flag("orbitSource", 8, 11),
					flag("ephAvail", 11, 12), flag("almAvail", 12, 13),
					flag("anoAvail", 13, 14), flag("aopAvail", 14, 15),
					flag("sbasCorrUsed", 16, 17), flag("rtcmCorrUsed", 17, 18)),
			}},
		),
	)
}

func cfgClass() *schema.Class {
	return schema.MustClass(ClassCFG, "CFG",
		schema.MustMessage(0x00, "PRT",
			u1("portID"), pad(1),
			bits("txReady", 2,
				flag("en", 0, 1), flag("pol", 1, 2),
				flag("pin", 2, 7), flag("thres", 7, 16)),
			bits("mode", 4,
				flag("charLen", 6, 8), flag("parity", 9, 12),
				flag("nStopBits", 12, 14)),
			u4("baudRate"),
			bits("inProtoMask", 2,
				flag("inUbx", 0, 1), flag("inNmea", 1, 2),
				flag("inRtcm", 2, 3), flag("inRtcm3", 5, 6)),
			bits("outProtoMask", 2,
				flag("outUbx", 0, 1), flag("outNmea", 1, 2),
				flag("outRtcm3", 5, 6)),
			bits("flags", 2, flag("extendedTxTimeout", 1, 2)),
			pad(2),
		),
		schema.MustMessage(0x01, "MSG",
			u1("msgClass"), u1("msgID"), arr("rate", schema.KindU1, 6),
		),
		schema.MustMessage(0x08, "RATE",
			u2("measRate"), u2("navRate"), u2("timeRef"),
		),
		schema.MustMessage(0x8B, "VALGET",
			u1("version"), u1("layer"), u2("position"),
			schema.RepeatedBlock{Name: "cfgData", Inner: []schema.Descriptor{
				u1("data"),
			}},
		),
	)
}

func monClass() *schema.Class {
	return schema.MustClass(ClassMON, "MON",
		schema.MustMessage(0x04, "VER",
			str("swVersion", 30), str("hwVersion", 10),
			schema.RepeatedBlock{Name: "extension", Inner: []schema.Descriptor{
				str("extension", 30),
			}},
		),
		schema.MustMessage(0x09, "HW",
			u4("pinSel"), u4("pinBank"), u4("pinDir"), u4("pinVal"),
			u2("noisePerMS"), u2("agcCnt"), u1("aStatus"), u1("aPower"),
			bits("flags", 1,
				flag("rtcCalib", 0, 1), flag("safeBoot", 1, 2),
				flag("jammingState", 2, 4), flag("xtalAbsent", 4, 5)),
			pad(1),
			u4("usedMask"), arr("VP", schema.KindU1, 17), u1("jamInd"),
			pad(2),
			u4("pinIrq"), u4("pullH"), u4("pullL"),
		),
		schema.MustMessage(0x38, "RF",
			u1("version"), u1("nBlocks"), pad(2),
			schema.RepeatedBlock{Name: "blocks", Inner: []schema.Descriptor{
				u1("blockId"),
				bits("flags", 1, flag("jammingState", 0, 2)),
				u1("antStatus"), u1("antPower"), u4("postStatus"),
				pad(4),
				u2("noisePerMS"), u2("agcCnt"), u1("jamInd"),
				i1("ofsI"), u1("magI"), i1("ofsQ"), u1("magQ"),
				pad(3),
			}},
		),
	)
}

func esfClass() *schema.Class {
	return schema.MustClass(ClassESF, "ESF",
		schema.MustMessage(0x14, "ALG",
			u4("iTOW"), u1("version"),
			bits("flags", 1,
				flag("autoMntAlgOn", 0, 1), flag("status", 1, 4)),
			bits("error", 1,
				flag("tiltAlgError", 0, 1), flag("yawAlgError", 1, 2),
				flag("angleError", 2, 3)),
			pad(1),
			u4("yaw"), i2("pitch"), i2("roll"),
		),
		schema.MustMessage(0x10, "STATUS",
			u4("iTOW"), u1("version"),
			bits("initStatus1", 1,
				flag("wtInitStatus", 0, 2), flag("mntAlgStatus", 2, 5),
				flag("insInitStatus", 5, 7)),
			bits("initStatus2", 1, flag("imuInitStatus", 0, 2)),
			pad(5),
			u1("fusionMode"), pad(2), u1("numSens"),
			schema.RepeatedBlock{Name: "sensors", Inner: []schema.Descriptor{
				bits("sensStatus1", 1,
					flag("type", 0, 6), flag("used", 6, 7), flag("ready", 7, 8)),
				bits("sensStatus2", 1,
					flag("calibStatus", 0, 2), flag("timeStatus", 2, 4)),
				u1("freq"),
				bits("faults", 1,
					flag("badMeas", 0, 1), flag("badTTag", 1, 2),
					flag("missingMeas", 2, 3), flag("noisyMeas", 3, 4)),
			}},
		),
		schema.MustMessage(0x02, "MEAS",
			u4("timeTag"),
			bits("flags", 2,
				flag("timeMarkSent", 0, 2), flag("timeMarkEdge", 2, 3),
				flag("calibTtagValid", 3, 4), flag("numMeas", 11, 16)),
			u2("id"),
			schema.RepeatedBlock{Name: "data", Inner: []schema.Descriptor{
				bits("data", 4,
					flag("dataField", 0, 24), flag("dataType", 24, 30)),
			}},
		),
	)
}
